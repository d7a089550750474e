package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Run("shorter than max is unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello", 50))
	})

	t.Run("cuts at max runes", func(t *testing.T) {
		assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	})

	t.Run("multi-byte safe", func(t *testing.T) {
		assert.Equal(t, "한국어", Truncate("한국어 텍스트", 3))
	})

	t.Run("zero max yields empty", func(t *testing.T) {
		assert.Equal(t, "", Truncate("abc", 0))
	})
}

func TestNormalizeTask(t *testing.T) {
	assert.Equal(t, "build a report", NormalizeTask("  build a report\n"))
	assert.Equal(t, "", NormalizeTask("   \t\n"))
}
