package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures a logger built by New.
type Option func(*options)

type options struct {
	level  slog.Leveler
	json   bool
	output io.Writer
	attrs  []slog.Attr
	source bool
}

// New builds a *slog.Logger. Defaults: text format, info level, stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level, AddSource: o.source}

	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.output, hopts)
	} else {
		h = slog.NewTextHandler(o.output, hopts)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	return slog.New(h)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		if level != nil {
			o.level = level
		}
	}
}

// WithJSONFormatter switches output to JSON.
func WithJSONFormatter() Option {
	return func(o *options) { o.json = true }
}

// WithTextFormatter switches output to logfmt-style text.
func WithTextFormatter() Option {
	return func(o *options) { o.json = false }
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithSource records the caller position.
func WithSource() Option {
	return func(o *options) { o.source = true }
}

// WithDevelopment configures text output at debug level with source positions.
func WithDevelopment(service string) Option {
	return func(o *options) {
		o.json = false
		o.level = slog.LevelDebug
		o.source = true
		o.attrs = append(o.attrs, slog.String("service", service), slog.String("env", "development"))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(o *options) {
		o.json = true
		o.level = slog.LevelInfo
		o.attrs = append(o.attrs, slog.String("service", service), slog.String("env", "production"))
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
