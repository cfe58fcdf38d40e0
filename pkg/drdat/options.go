package drdat

// Logger receives per-variable diagnostics. The module's internal/logger
// and *slog.Logger both satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
}

// Option configures a single Encode or Decode call.
type Option func(*options)

type options struct {
	log       Logger
	strictNaN bool
}

// WithLogger reports each variable at debug level while encoding or decoding.
func WithLogger(l Logger) Option {
	return func(o *options) { o.log = l }
}

// WithStrictNaN makes Decode return NaN for samples holding the NaN sentinel
// instead of dequantizing the sentinel code like any other sample.
func WithStrictNaN() Option {
	return func(o *options) { o.strictNaN = true }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o *options) debug(msg string, args ...any) {
	if o.log != nil {
		o.log.Debug(msg, args...)
	}
}
