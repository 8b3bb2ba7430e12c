package seedr

import "time"

// Status is one of the three states an emitted Item may be in (spec §6
// "Emitted item shape").
type Status int

const (
	Downloading Status = iota
	Completed
	Warning
)

// Item is the uniform per-mapping view GetItems emits.
type Item struct {
	DownloadID    string
	Title         string
	TotalSize     int64
	RemainingSize int64
	RemainingTime *time.Duration
	Status        Status
	Message       string
	OutputPath    *string
	CanMoveFiles  bool
	CanBeRemoved  bool
}
