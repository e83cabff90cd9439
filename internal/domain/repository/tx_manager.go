package repository

import "context"

// TxManager runs fn inside one transaction. The transaction travels in the
// context handed to fn; repositories called with that context join it.
// Nested calls reuse the outer transaction. Returning an error rolls back.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
