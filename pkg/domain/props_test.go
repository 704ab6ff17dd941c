package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type heroProps struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestDecodeProps(t *testing.T) {
	props := ComponentPropsCollection{
		"x1": map[string]any{"title": "Hello", "count": 3.0},
		"x2": ComponentPropsError{Error: "Error during preload data for component x2: boom"},
		"x3": "plain",
	}

	t.Run("map into struct", func(t *testing.T) {
		var out heroProps
		require.NoError(t, DecodeProps(props, "x1", &out))
		assert.Equal(t, heroProps{Title: "Hello", Count: 3}, out)
	})

	t.Run("scalar", func(t *testing.T) {
		var out string
		require.NoError(t, DecodeProps(props, "x3", &out))
		assert.Equal(t, "plain", out)
	})

	t.Run("failed loader", func(t *testing.T) {
		var out heroProps
		err := DecodeProps(props, "x2", &out)
		assert.ErrorIs(t, err, ErrPropsFailed)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("missing uid", func(t *testing.T) {
		var out heroProps
		assert.ErrorIs(t, DecodeProps(props, "nope", &out), ErrPropsNotFound)
	})
}

func TestPropsError(t *testing.T) {
	props := ComponentPropsCollection{
		"a": ComponentPropsError{Error: "bad"},
		"b": &ComponentPropsError{Error: "worse"},
		"c": map[string]any{"error": "looks like one but is data"},
	}

	msg, ok := props.PropsError("a")
	assert.True(t, ok)
	assert.Equal(t, "bad", msg)

	msg, ok = props.PropsError("b")
	assert.True(t, ok)
	assert.Equal(t, "worse", msg)

	_, ok = props.PropsError("c")
	assert.False(t, ok)
}
