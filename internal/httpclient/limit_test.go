package httpclient

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllWithLimitUnderLimit(t *testing.T) {
	data, err := ReadAllWithLimit(strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadAllWithLimitExactLimit(t *testing.T) {
	data, err := ReadAllWithLimit(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadAllWithLimitOverLimit(t *testing.T) {
	_, err := ReadAllWithLimit(strings.NewReader("hello world"), 5)
	require.Error(t, err)
	assert.True(t, IsBodyTooLarge(err))
	assert.Contains(t, err.Error(), "5 byte cap")
}

func TestReadAllWithLimitZeroMeansUnlimited(t *testing.T) {
	data, err := ReadAllWithLimit(strings.NewReader(strings.Repeat("x", 4096)), 0)
	require.NoError(t, err)
	assert.Len(t, data, 4096)
}

func TestIsBodyTooLargeSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("read page: %w", &BodyTooLargeError{Limit: 64})
	assert.True(t, IsBodyTooLarge(wrapped))
	assert.False(t, IsBodyTooLarge(fmt.Errorf("plain failure")))
}
