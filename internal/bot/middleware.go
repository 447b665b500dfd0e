package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/staya/staya-chatbot-go/internal/logger"
)

// PanicError is returned by RecoveryMiddleware when a handler panics.
type PanicError struct {
	Handler string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked: %v", e.Handler, e.Value)
}

// LoggingMiddleware logs handler execution with timing at debug level.
// Errors are not logged here; the processor logs them once.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, h Handler, msg *Message, chat Chat) error {
			start := time.Now()

			log.WithModule(h.Name()).DebugContext(ctx, "Handler started",
				"text_length", len(msg.Text),
				"attachments", len(msg.Attachments),
			)

			err := next(ctx, h, msg, chat)

			log.WithModule(h.Name()).DebugContext(ctx, "Handler completed",
				"duration_ms", time.Since(start).Milliseconds(),
				"failed", err != nil,
			)
			return err
		}
	}
}

// RecoveryMiddleware turns a handler panic into a *PanicError.
func RecoveryMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, h Handler, msg *Message, chat Chat) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Handler: h.Name(), Value: r, Stack: debug.Stack()}
				}
			}()
			return next(ctx, h, msg, chat)
		}
	}
}
