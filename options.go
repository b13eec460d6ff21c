package fdtforge

// Option configures how a blob is parsed.
type Option func(*config)

type config struct {
	lenientTags bool
}

// WithLenientTags makes the tokenizer skip unrecognized struct tags
// (advancing one 4-byte word) instead of failing with
// ErrMalformedToken. Useful for blobs produced by a newer devicetree
// spec revision that added tag values beyond the five we know.
func WithLenientTags() Option {
	return func(c *config) {
		c.lenientTags = true
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
