package kv

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetAbsent(t *testing.T) {
	s := NewMemory()

	v, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestMemory_SetGetDelete(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.Set("cart", []byte(`[]`)))

	v, ok, err := s.Get("cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), v)

	require.NoError(t, s.Delete("cart"))

	_, ok, err = s.Get("cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DeleteAbsentIsNoop(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Delete("never-set"))
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set("k", []byte("abc")))

	v, _, err := s.Get("k")
	require.NoError(t, err)
	v[0] = 'x'

	again, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemory_FailWrites(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set("k", []byte("v")))

	s.FailWrites(errors.New("disk full"))

	err := s.Set("k", []byte("v2"))
	require.Error(t, err)
	assert.True(t, IsStorageError(err))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "set", se.Op)
	assert.Equal(t, "k", se.Key)

	// Prior value is untouched.
	v, ok, getErr := s.Get("k")
	require.NoError(t, getErr)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestPebble_RoundTrip(t *testing.T) {
	s, err := OpenPebble(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("orders", []byte(`[{"id":"1"}]`)))

	v, ok, err := s.Get("orders")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"id":"1"}]`), v)

	_, ok, err = s.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete("orders"))
	_, ok, err = s.Get("orders")
	require.NoError(t, err)
	assert.False(t, ok)
}
