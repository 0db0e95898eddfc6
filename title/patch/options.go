package patch

import (
	"log/slog"

	"github.com/joshuapare/titlepatch/internal/logger"
)

// Option configures a patcher call.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sends diagnostics to l instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func apply(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	o.log = logger.Or(o.log)
	return o
}
