// Package ownership is the Ownership Registry (C2): optional multi-instance
// coordination over a shared Seedr account, backed by a remote set-with-TTL
// (spec §4.2). Every operation is three-valued (true | false | unknown);
// callers must treat unknown as "do not delete" — the fail-safe stance for
// shared cloud state (spec §4.2, §7).
package ownership

import "context"

// Result is a three-valued release/membership outcome. Unknown means the
// registry could not be consulted (connection or command failure) and
// callers must behave as if they do not own the item. A disabled registry
// (see NewNoop) reports True, not Unknown.
type Result int

const (
	Unknown Result = iota
	False
	True
)

// Registry is the capability C5 consumes. Implementations must never panic
// or block past their configured timeouts; a failure of IsOwnedByMe or
// ReleaseOwnership degrades to Unknown, and ClaimOwnership returns it as an
// error (spec §9 "Do NOT expose connection primitives to callers").
type Registry interface {
	// ClaimOwnership adds instanceTag to infoHash's owner set and refreshes
	// its TTL. Self-gates on configuration: a no-op registry's Claim always
	// succeeds trivially.
	ClaimOwnership(ctx context.Context, infoHash string) error

	// IsOwnedByMe reports whether this instance's tag is a current member
	// of infoHash's owner set.
	IsOwnedByMe(ctx context.Context, infoHash string) Result

	// ReleaseOwnership atomically removes this instance's tag from
	// infoHash's owner set, then inspects the remaining cardinality: zero
	// members deletes the key and returns True ("I was the last owner");
	// otherwise the TTL is refreshed and it returns False. Returns Unknown
	// on any registry error.
	ReleaseOwnership(ctx context.Context, infoHash string) Result

	// TestConnection reports a non-empty message on any connectivity
	// problem, for use in C5's self-test (spec §4.5 step 4).
	TestConnection(ctx context.Context) string
}
