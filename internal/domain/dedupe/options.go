package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*window)

// WithMaxSize sets how many keys the window holds. Non-positive means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
