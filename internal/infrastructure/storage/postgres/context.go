package postgres

import (
	"context"
	"fmt"
)

type txManagerKey struct{}

// WithTxManager stores the TxManager in context. The HTTP layer injects it
// once per request; workers inject it at startup.
func WithTxManager(ctx context.Context, txm *TxManager) context.Context {
	return context.WithValue(ctx, txManagerKey{}, txm)
}

// MustGetTxManager returns *postgres.TxManager from context.
// It is meant for infrastructure code that needs access to GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.Manager.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm, ok := ctx.Value(txManagerKey{}).(*TxManager)
	if !ok || txm == nil {
		panic(fmt.Sprintf("TxManager missing from context or has unexpected type: %T", ctx.Value(txManagerKey{})))
	}
	return txm
}
