// Package mapping is the process-local store of DownloadMapping records
// (C3): the memory that ties BitTorrent info-hashes to Seedr cloud
// identifiers and local-copy progress. See spec §3 and §4.3.
package mapping

import "time"

// DownloadMapping is the central per-release record described in spec §3.
// Mutations are always a whole-record replace via Store.Set — no caller
// ever sees a partially written mapping.
type DownloadMapping struct {
	// InfoHash is the canonical key: uppercase hex, or "seedr-<id>" when no
	// hash was known at the time the mapping was created.
	InfoHash string

	TransferID *string
	FolderID   *string
	FileID     *string

	Name string

	LocalDownloadComplete   bool
	LocalDownloadInProgress bool
	LocalDownloadFailed     bool

	DownloadAttempts int
	NextRetryAfter   *time.Time

	// FolderReadyAttempts counts polls spent waiting for Seedr to finish
	// assembling a folder; terminal after 20 (spec §4.4, §4.5).
	FolderReadyAttempts int

	LastProgress           float64
	LastProgressTime       *time.Time
	LocalDownloadStartTime *time.Time
	LocalTotalBytes        int64
}

// Clone returns a value copy safe to mutate independently of the copy held
// by the store.
func (m DownloadMapping) Clone() DownloadMapping {
	return m
}

// ResetLocalState clears every local-copy flag, the retry/backoff state,
// the folder-ready counter and the local-copy start time and size. The
// cloud progress memory (LastProgress, LastProgressTime) is kept.
func (m *DownloadMapping) ResetLocalState() {
	m.LocalDownloadComplete = false
	m.LocalDownloadInProgress = false
	m.LocalDownloadFailed = false
	m.DownloadAttempts = 0
	m.NextRetryAfter = nil
	m.FolderReadyAttempts = 0
	m.LocalDownloadStartTime = nil
	m.LocalTotalBytes = 0
}

// MarkComplete applies the invariant "complete ⇒ no retry state" (spec §3).
func (m *DownloadMapping) MarkComplete() {
	m.LocalDownloadComplete = true
	m.LocalDownloadInProgress = false
	m.LocalDownloadFailed = false
	m.DownloadAttempts = 0
	m.NextRetryAfter = nil
}

// MarkFailed increments DownloadAttempts and schedules the next retry with
// exponential backoff (base 2^attempts, capped at 30 minutes), per spec
// §4.4 step 5 and the round-trip in §8 scenario 6.
func (m *DownloadMapping) MarkFailed(now time.Time) {
	m.LocalDownloadInProgress = false
	m.LocalDownloadFailed = true
	m.DownloadAttempts++

	backoffMinutes := 1 << m.DownloadAttempts
	if backoffMinutes > 30 {
		backoffMinutes = 30
	}
	next := now.Add(time.Duration(backoffMinutes) * time.Minute)
	m.NextRetryAfter = &next
}
