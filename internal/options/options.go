// Package options provides the generic functional-option plumbing used by the
// exported configuration surfaces (tokenizer, walker, archive scan).
//
// Packages alias Option[T] to a named option type for their config struct and
// build concrete options with New or NoError:
//
//	type WalkerOption = options.Option[*Walker]
//
//	func WithTrace(fn TraceFunc) WalkerOption {
//	    return options.NoError(func(w *Walker) { w.trace = fn })
//	}
package options

// Option configures a target of type T and may reject invalid settings.
type Option[T any] interface {
	apply(T) error
}

// optionFunc adapts a plain function to the Option interface.
type optionFunc[T any] struct {
	fn func(T) error
}

func (o optionFunc[T]) apply(target T) error {
	return o.fn(target)
}

// New wraps a fallible configuration function into an Option.
func New[T any](fn func(T) error) Option[T] {
	return optionFunc[T]{fn: fn}
}

// NoError wraps an infallible configuration function into an Option.
func NoError[T any](fn func(T)) Option[T] {
	return optionFunc[T]{fn: func(target T) error {
		fn(target)
		return nil
	}}
}

// Apply runs each option against target in order, stopping at the first
// error. Later options override earlier ones when they touch the same field.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
