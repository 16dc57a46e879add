package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter configures where replies are written. Default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithErrorWriter configures where diagnostics are written. Default is os.Stderr.
func WithErrorWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.errWriter = writer
		}
	}
}

// WithMode configures the reply rendering mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// WithWordWrap sets the markdown wrap width. Zero disables wrapping.
func WithWordWrap(width int) Option {
	return func(p *Printer) {
		p.wordWrap = width
	}
}
