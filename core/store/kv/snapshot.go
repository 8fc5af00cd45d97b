package kv

// Snapshot exposes a bucket as a store snapshot so that a contract execution
// can run inside a single database transaction and commit atomically.
//
// - implements store.Snapshot
type Snapshot struct {
	bucket Bucket
}

// NewSnapshot wraps the bucket into a snapshot.
func NewSnapshot(bucket Bucket) Snapshot {
	return Snapshot{
		bucket: bucket,
	}
}

// Get implements store.Readable. It returns a copy of the value associated to
// the key, or nil if it is not set. The copy makes the value usable after the
// underlying transaction has ended.
func (snap Snapshot) Get(key []byte) ([]byte, error) {
	value := snap.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	return append([]byte{}, value...), nil
}

// Set implements store.Writable. It sets the value for the key.
func (snap Snapshot) Set(key, value []byte) error {
	return snap.bucket.Set(key, value)
}

// Delete implements store.Writable. It deletes the key from the bucket.
func (snap Snapshot) Delete(key []byte) error {
	return snap.bucket.Delete(key)
}
