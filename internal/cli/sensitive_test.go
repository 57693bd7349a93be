package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "•••• •••• •••• 1111", mask("4111 1111 1111 1111"))
	assert.Equal(t, "•• •50.40 EUR", mask("12 250.40 EUR"))
	assert.Equal(t, "123", mask("123"))
}

func TestStaticSource(t *testing.T) {
	src := DemoSource()
	ctx := context.Background()

	card, err := src.CardNumber(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "5500 0000 0000 0004", card)

	_, err = src.CardNumber(ctx, 0)
	assert.Error(t, err)
	_, err = src.CardNumber(ctx, 3)
	assert.Error(t, err)
}
