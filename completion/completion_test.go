package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("openai: missing API key")
	text, err := Unavailable(cause).Complete(context.Background(), "Provide a recipe")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, cause)
}
