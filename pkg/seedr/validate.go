package seedr

// ValidationFailure is one field-scoped problem surfaced by Test (spec
// §4.5 "Test").
type ValidationFailure struct {
	Field   string
	Message string
	Warning bool
}

const (
	fieldEmail = "Email"
	fieldRedis = "Redis"
	fieldDir   = "DownloadDirectory"
)
