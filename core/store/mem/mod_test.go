package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	snap := NewSnapshot()

	value, err := snap.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)

	err = snap.Set([]byte("ping"), []byte("pong"))
	require.NoError(t, err)

	value, err = snap.Get([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), value)

	// Mutating the returned value must not affect the storage.
	value[0] = 'P'

	value, err = snap.Get([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), value)

	err = snap.Delete([]byte("ping"))
	require.NoError(t, err)

	value, err = snap.Get([]byte("ping"))
	require.NoError(t, err)
	require.Nil(t, value)
}
