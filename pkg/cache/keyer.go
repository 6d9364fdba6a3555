package cache

// DeckKeyOpts are the inputs to a deck key besides the content hash.
type DeckKeyOpts struct {
	// Fingerprint identifies the conversion options that affect output.
	Fingerprint string `json:"fingerprint"`
	// Version identifies the converter build.
	Version string `json:"version"`
}

// Keyer builds cache keys.
type Keyer interface {
	// DeckKey keys a finished presentation.
	DeckKey(contentHash string, opts DeckKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DeckKey implements Keyer.
func (DefaultKeyer) DeckKey(contentHash string, opts DeckKeyOpts) string {
	return hashKey("deck", contentHash, opts)
}

// ScopedKeyer prefixes every key so that several tenants can share one
// store without colliding.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DeckKey implements Keyer.
func (k *ScopedKeyer) DeckKey(contentHash string, opts DeckKeyOpts) string {
	return k.prefix + k.inner.DeckKey(contentHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
