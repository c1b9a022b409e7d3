package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

type archiveTxKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, archiveTxKey{}, tx)
}

// getDBFromCtx returns the transaction started by RunInTx, or base outside one.
func getDBFromCtx(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(archiveTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return base
}

// TxManager groups archive writes so an event row and the session journal
// change it caused commit together.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

// RunInTx joins a transaction already carried by ctx instead of nesting.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(archiveTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
