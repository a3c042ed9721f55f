package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("book")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{"book", "coll", "backup"} {
		id, err := Generate(prefix)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, prefix+"-"))
		// NanoID default length is 21.
		assert.Len(t, id, len(prefix)+1+21)
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("book")
		assert.NotEmpty(t, id)
	})
}
