// Package execution defines the primitives to execute a contract command.
package execution

import "go.dedis.ch/ballot/core/txn"

// Result is the result of a transaction execution.
type Result struct {
	// Accepted is the success state of the transaction.
	Accepted bool

	// Message gives a chance to the execution to explain why a transaction
	// has failed.
	Message string
}

// Step is the input of a contract execution.
type Step struct {
	// Current is the transaction being executed.
	Current txn.Transaction
}
