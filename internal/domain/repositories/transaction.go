package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. Every mutation that
// touches more than one record (move with rename, cascade delete,
// bind/unbind) runs inside a single ExecTx call; bulk operations run one
// ExecTx per constituent item so one item's failure cannot roll back
// another's success.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
