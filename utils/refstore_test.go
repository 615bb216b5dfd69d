package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitStoreSetGet(t *testing.T) {
	store := NewVisitStore()

	store.Set("visitor-1", "FRIEND15", time.Hour)

	code, ok := store.Get("visitor-1")
	assert.True(t, ok)
	assert.Equal(t, "FRIEND15", code)

	// Get does not consume the entry
	code, ok = store.Get("visitor-1")
	assert.True(t, ok)
	assert.Equal(t, "FRIEND15", code)
}

func TestVisitStoreMissingKey(t *testing.T) {
	store := NewVisitStore()

	_, ok := store.Get("nobody")
	assert.False(t, ok)

	_, ok = store.Take("nobody")
	assert.False(t, ok)
}

func TestVisitStoreExpiry(t *testing.T) {
	store := NewVisitStore()

	store.Set("visitor-1", "FRIEND15", -time.Second)

	_, ok := store.Get("visitor-1")
	assert.False(t, ok)

	store.Set("visitor-2", "FRIEND15", -time.Second)
	_, ok = store.Take("visitor-2")
	assert.False(t, ok)
}

func TestVisitStoreTakeConsumes(t *testing.T) {
	store := NewVisitStore()

	store.Set("visitor-1", "FRIEND15", time.Hour)

	code, ok := store.Take("visitor-1")
	assert.True(t, ok)
	assert.Equal(t, "FRIEND15", code)

	// Second conversion attempt finds nothing
	_, ok = store.Take("visitor-1")
	assert.False(t, ok)
	_, ok = store.Get("visitor-1")
	assert.False(t, ok)
}

func TestVisitStoreOverwrite(t *testing.T) {
	store := NewVisitStore()

	store.Set("visitor-1", "FRIEND15", time.Hour)
	store.Set("visitor-1", "PARTNER20", time.Hour)

	code, ok := store.Take("visitor-1")
	assert.True(t, ok)
	assert.Equal(t, "PARTNER20", code)
}
