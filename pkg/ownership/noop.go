package ownership

import "context"

// noopRegistry is used when multi-tenancy is not configured (spec §4.2:
// "all operations degrade to no-op ... when multi-tenancy is not
// configured"). Claims trivially succeed; membership/release both report
// True so a single-instance deployment behaves as sole, unconditional
// owner of everything it grabs.
type noopRegistry struct{}

// NewNoop returns a Registry that always behaves as if this instance is
// the sole owner of every item.
func NewNoop() Registry {
	return noopRegistry{}
}

func (noopRegistry) ClaimOwnership(ctx context.Context, infoHash string) error {
	return nil
}

func (noopRegistry) IsOwnedByMe(ctx context.Context, infoHash string) Result {
	return True
}

func (noopRegistry) ReleaseOwnership(ctx context.Context, infoHash string) Result {
	return True
}

func (noopRegistry) TestConnection(ctx context.Context) string {
	return ""
}

var _ Registry = noopRegistry{}
