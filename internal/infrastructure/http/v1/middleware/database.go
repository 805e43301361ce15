package middleware

import (
	"github.com/gin-gonic/gin"

	"saldo/internal/infrastructure/storage/postgres"
)

// Database injects the transaction manager into the request context.
// Repositories resolve it per-request via postgres.MustGetTxManager, so a
// handler-opened transaction is visible to every repository call underneath.
func Database(txManager *postgres.TxManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := postgres.WithTxManager(c.Request.Context(), txManager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
