package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltDB_UpdateAndView(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	bucketName := []byte("ballot")

	committed := false

	err = db.Update(func(tx WritableTx) error {
		tx.OnCommit(func() { committed = true })

		bucket, err := tx.GetBucketOrCreate(bucketName)
		require.NoError(t, err)

		return bucket.Set([]byte("ping"), []byte("pong"))
	})
	require.NoError(t, err)
	require.True(t, committed)

	err = db.View(func(tx ReadableTx) error {
		bucket := tx.GetBucket(bucketName)
		require.NotNil(t, bucket)

		require.Equal(t, []byte("pong"), bucket.Get([]byte("ping")))

		return nil
	})
	require.NoError(t, err)
}

func TestBoltDB_MissingBucket(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	err = db.View(func(tx ReadableTx) error {
		require.Nil(t, tx.GetBucket([]byte("unknown")))

		return nil
	})
	require.NoError(t, err)
}

func TestBoltDB_Scan(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	err = db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("ballot"))
		require.NoError(t, err)

		require.NoError(t, bucket.Set([]byte("proposal:0"), []byte("X")))
		require.NoError(t, bucket.Set([]byte("proposal:1"), []byte("Y")))
		require.NoError(t, bucket.Set([]byte("voter:A"), []byte("ok")))

		keys := [][]byte{}
		err = bucket.Scan([]byte("proposal:"), func(k, v []byte) error {
			keys = append(keys, append([]byte{}, k...))
			return nil
		})
		require.NoError(t, err)
		require.Len(t, keys, 2)

		return nil
	})
	require.NoError(t, err)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	err = db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("ballot"))
		require.NoError(t, err)

		snap := NewSnapshot(bucket)

		value, err := snap.Get([]byte("form"))
		require.NoError(t, err)
		require.Nil(t, value)

		require.NoError(t, snap.Set([]byte("form"), []byte("{}")))

		value, err = snap.Get([]byte("form"))
		require.NoError(t, err)
		require.Equal(t, []byte("{}"), value)

		require.NoError(t, snap.Delete([]byte("form")))

		value, err = snap.Get([]byte("form"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

func TestBoltDB_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "unknown", "test.db"))
	require.Error(t, err)
}
