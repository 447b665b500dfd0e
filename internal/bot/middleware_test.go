package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, h Handler, msg *Message, chat Chat) error {
				order = append(order, name+">")
				err := next(ctx, h, msg, chat)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	r := NewRegistry()
	r.Use(mw("outer"), mw("inner"))
	r.Register(&funcHandler{
		name:   "h",
		accept: func(*Message) bool { return true },
		handle: func(context.Context, *Message, Chat) error {
			order = append(order, "handle")
			return nil
		},
	})

	h, err := r.Dispatch(context.Background(), &Message{}, nopChat{})
	require.NoError(t, err)
	assert.Equal(t, "h", h.Name())
	assert.Equal(t, []string{"outer>", "inner>", "handle", "<inner", "<outer"}, order)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	run := RecoveryMiddleware()(func(context.Context, Handler, *Message, Chat) error {
		panic("oops")
	})
	err := run(context.Background(), &funcHandler{name: "p"}, &Message{}, nopChat{})

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "p", panicErr.Handler)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Contains(t, err.Error(), "handler p panicked: oops")
}

func TestMessage_FirstAttachment(t *testing.T) {
	t.Parallel()

	_, ok := (&Message{}).FirstAttachment()
	assert.False(t, ok)

	msg := &Message{Attachments: []Attachment{
		OtherAttachment{Type: "image"},
		LocationAttachment{Title: "Home"},
	}}
	first, ok := msg.FirstAttachment()
	require.True(t, ok)
	assert.Equal(t, "image", first.Kind())
	assert.Equal(t, AttachmentLocation, LocationAttachment{}.Kind())
}
