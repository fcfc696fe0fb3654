package services

import "context"

// TxRunner runs fn inside a single storage transaction carried through the
// context; the postgres plugin provides the implementation.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
