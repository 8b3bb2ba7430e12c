// Package runtime holds build-time metadata injected via -ldflags, the
// same mechanism the teacher uses for its binary.
package runtime

var (
	Version   = "dev"
	GitCommit = "unknown"
	Timestamp = "unknown"
)
