package provider

// Middleware transforms a RequestResponse provider by wrapping it.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes multiple middlewares into one. The first middleware is
// outermost: Chain(a, b, c)(p) is a(b(c(p))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			inner = middlewares[i](inner)
		}
		return inner
	}
}
