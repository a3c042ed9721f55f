package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_AddCustomCollection(t *testing.T) {
	b := &Book{ID: "book-1"}

	assert.True(t, b.AddCustomCollection("Favorites"))
	assert.Equal(t, []string{"Favorites"}, b.CustomCollections)

	// Second add is a no-op.
	assert.False(t, b.AddCustomCollection("Favorites"))
	assert.Equal(t, []string{"Favorites"}, b.CustomCollections)
}

func TestBook_RemoveCustomCollection(t *testing.T) {
	b := &Book{CustomCollections: []string{"A", "B", "C"}}

	assert.True(t, b.RemoveCustomCollection("B"))
	assert.Equal(t, []string{"A", "C"}, b.CustomCollections)

	assert.False(t, b.RemoveCustomCollection("B"))
	assert.Equal(t, []string{"A", "C"}, b.CustomCollections)
}

func TestBook_RenameCustomCollection(t *testing.T) {
	b := &Book{CustomCollections: []string{"Old", "Keep"}}

	assert.True(t, b.RenameCustomCollection("Old", "New"))
	assert.Equal(t, []string{"Keep", "New"}, b.CustomCollections)

	// Idempotent: the name is gone now.
	assert.False(t, b.RenameCustomCollection("Old", "New"))
}

func TestBook_RenameCustomCollection_TargetAlreadyPresent(t *testing.T) {
	b := &Book{CustomCollections: []string{"Old", "New"}}

	assert.True(t, b.RenameCustomCollection("Old", "New"))
	// No duplicate "New".
	assert.Equal(t, []string{"New"}, b.CustomCollections)
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusRead, StatusReading, StatusToRead, StatusNotInterested, StatusBorrowed} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, Status("finished").IsValid())
	assert.False(t, Status("").IsValid())
}
