package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and, when set, the open transaction
// repos must run on.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
