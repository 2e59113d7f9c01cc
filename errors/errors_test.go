package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsSimilarityError(nil))
	assert.False(t, IsInvalidInputError(nil))
}

func TestWrapSimilarity(t *testing.T) {
	cause := New("connection refused")
	err := WrapSimilarity(cause, "embed dataset description")

	assert.True(t, IsSimilarityError(err))
	assert.True(t, Is(err, cause), "original cause must stay reachable")
	assert.Contains(t, err.Error(), "embed dataset description")
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, IsInvalidInputError(err))
}

func TestInvalidInput(t *testing.T) {
	err := NewInvalidInputError("table %s has no header", "grant.csv")
	require.Error(t, err)
	assert.True(t, IsInvalidInputError(err))
	assert.Contains(t, err.Error(), "grant.csv")

	missing := Wrapf(ErrMissingColumn, "column %q", "grant_id")
	assert.True(t, IsInvalidInputError(missing))
}

func TestErrorChaining(t *testing.T) {
	base := New("base error")

	err := Wrap(base, "layer 1")
	err = WithHint(err, "helpful hint")
	err = WithDetail(err, "detailed info")
	err = Wrap(err, "layer 2")

	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "layer 2")
	assert.Contains(t, GetAllHints(err), "helpful hint")
	assert.Contains(t, GetAllDetails(err), "detailed info")
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to embed text")
	fmt.Println(err)
	// Output: failed to embed text: connection failed
}
