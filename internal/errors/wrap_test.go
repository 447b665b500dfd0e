package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapper_Wrap(t *testing.T) {
	w := NewWrapper("nearby", "format_cards")

	assert.NoError(t, w.Wrap(nil))

	err := w.Wrap(ErrListingWithoutImage)
	assert.Equal(t, "[nearby:format_cards] listing has no images", err.Error())
	assert.ErrorIs(t, err, ErrListingWithoutImage)
}

func TestModule(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped", NewWrapper("nearby", "fetch_listings").Wrap(errors.New("boom")), "nearby"},
		{"wrapped deeper", fmt.Errorf("outer: %w", NewWrapper("greeting", "say").Wrap(errors.New("boom"))), "greeting"},
		{"plain", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Module(tt.err))
		})
	}
}
