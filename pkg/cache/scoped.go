package cache

import "github.com/matzehuels/revgraph/pkg/revision"

// ScopedKeyer wraps a Keyer with a prefix, so that several tenants (for
// example several served repositories) can share one Redis or MongoDB
// backend without colliding.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "srv:api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HistoryKey generates a prefixed history key.
func (k *ScopedKeyer) HistoryKey(repo string, tips []revision.ID, opts HistoryKeyOpts) string {
	return k.prefix + k.inner.HistoryKey(repo, tips, opts)
}
