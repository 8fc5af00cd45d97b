// Package txn defines the abstraction of transactions.
//
// A transaction is a contract input. It carries the identity of the caller
// and a list of named arguments.
package txn

import "go.dedis.ch/ballot/core/access"

// Transaction is what triggers a contract execution by passing it as part of
// the input.
type Transaction interface {
	// GetIdentity returns the identity that created the transaction.
	GetIdentity() access.Identity

	// GetArg is a getter for the arguments of the transaction.
	GetArg(key string) []byte
}

// Arg is a generic argument that can be stored in a transaction.
type Arg struct {
	Key   string
	Value []byte
}
