package cache

// ScopedKeyer wraps a Keyer with a prefix. The server scopes keys by build
// version so that a new release never reads entries produced by an older
// layout implementation from a shared Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ged2dot:v1.2.0:")
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

// DOTKey generates a prefixed key for DOT text.
func (k *ScopedKeyer) DOTKey(inputHash string, opts DOTKeyOpts) string {
	return k.prefix + k.inner.DOTKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
