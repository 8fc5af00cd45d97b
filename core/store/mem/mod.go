// Package mem provides an in-memory implementation of a store snapshot. It is
// mainly useful for tests and for ephemeral runs where the state does not
// need to survive the process.
package mem

// Snapshot is an in-memory key/value storage.
//
// - implements store.Snapshot
type Snapshot struct {
	values map[string][]byte
}

// NewSnapshot creates a new empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		values: make(map[string][]byte),
	}
}

// Get implements store.Readable. It returns a copy of the value associated to
// the key, or nil if it is not set. The copy keeps the caller from mutating
// the storage, like the database-backed snapshot does.
func (snap *Snapshot) Get(key []byte) ([]byte, error) {
	value, found := snap.values[string(key)]
	if !found {
		return nil, nil
	}

	return append([]byte{}, value...), nil
}

// Set implements store.Writable. It sets the value for the key.
func (snap *Snapshot) Set(key, value []byte) error {
	snap.values[string(key)] = value

	return nil
}

// Delete implements store.Writable. It deletes the key from the storage.
func (snap *Snapshot) Delete(key []byte) error {
	delete(snap.values, string(key))

	return nil
}
