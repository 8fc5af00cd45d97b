// Package access defines the interfaces for the access rights control.
package access

import (
	"encoding"

	"go.dedis.ch/ballot/core/store"
)

// Identity is an abstraction to uniquely identify a caller.
type Identity interface {
	encoding.TextMarshaler
}

// Credential is an abstraction of an access with a unique identifier and a
// rule that scopes it.
type Credential interface {
	// GetID returns the identifier of the credential. It is used as the
	// storage key of the granted identities.
	GetID() []byte

	// GetRule returns the scope of the credential.
	GetRule() string
}

// Service is an abstraction to verify and grant accesses.
type Service interface {
	// Match returns nil if the group of identities have access to the given
	// credential, otherwise a meaningful error on the reason it does not have
	// access.
	Match(store store.Readable, creds Credential, idents ...Identity) error

	// Grant updates the store so that the group of identities will match the
	// credential.
	Grant(store store.Snapshot, creds Credential, idents ...Identity) error
}

// Principal is a plain text identity. It fits deployments where the callers
// are authenticated by an outer layer and reach the contracts as opaque
// names.
//
// - implements access.Identity
type Principal string

// MarshalText implements encoding.TextMarshaler. It returns the name as is.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

func (p Principal) String() string {
	return string(p)
}
