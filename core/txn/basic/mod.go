// Package basic implements a plain transaction. It carries the caller
// identity as given, which fits deployments where the caller is
// authenticated before the transaction is built.
package basic

import (
	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/core/txn"
)

// Transaction is a plain transaction with an identity and arguments.
//
// - implements txn.Transaction
type Transaction struct {
	ident access.Identity
	args  map[string][]byte
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*Transaction)

// WithArg is an option to set an argument with the key and the value.
func WithArg(key string, value []byte) TransactionOption {
	return func(tx *Transaction) {
		tx.args[key] = value
	}
}

// WithArgs is an option to set a list of arguments at once.
func WithArgs(args ...txn.Arg) TransactionOption {
	return func(tx *Transaction) {
		for _, arg := range args {
			tx.args[arg.Key] = arg.Value
		}
	}
}

// NewTransaction creates a new transaction from the identity and the options.
func NewTransaction(ident access.Identity, opts ...TransactionOption) Transaction {
	tx := Transaction{
		ident: ident,
		args:  make(map[string][]byte),
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx
}

// GetIdentity implements txn.Transaction. It returns the identity that
// created the transaction.
func (t Transaction) GetIdentity() access.Identity {
	return t.ident
}

// GetArg implements txn.Transaction. It returns the value of the argument, or
// nil if it is not set.
func (t Transaction) GetArg(key string) []byte {
	return t.args[key]
}
