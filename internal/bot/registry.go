package bot

import (
	"context"
)

// HandlerFunc runs a handler on a message. Middlewares wrap it.
type HandlerFunc func(ctx context.Context, h Handler, msg *Message, chat Chat) error

// Middleware decorates handler execution.
type Middleware func(next HandlerFunc) HandlerFunc

// Registry manages bot handlers and dispatches messages.
// Handlers are consulted in registration order.
type Registry struct {
	handlers    []Handler
	middlewares []Middleware
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make([]Handler, 0),
	}
}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Use appends middlewares. The first one added is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Dispatch runs the first handler whose CanHandle accepts msg.
// It returns that handler (nil when nothing matched) and its error.
func (r *Registry) Dispatch(ctx context.Context, msg *Message, chat Chat) (Handler, error) {
	for _, h := range r.handlers {
		if h.CanHandle(msg) {
			return h, r.chain()(ctx, h, msg, chat)
		}
	}
	return nil, nil
}

func (r *Registry) chain() HandlerFunc {
	run := HandlerFunc(func(ctx context.Context, h Handler, msg *Message, chat Chat) error {
		return h.Handle(ctx, msg, chat)
	})
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		run = r.middlewares[i](run)
	}
	return run
}
