// Package query wraps go.mongodb.org/mongo-driver with the few operations the
// repositories need. Every call is timed, slow ones are logged.
package query

import (
	"errors"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = errors.New("document not found")

	// ErrEmptyBulk is returned by BulkUpsert without operations
	ErrEmptyBulk = errors.New("empty bulk operation")
)

// UpsertOp is one replace-or-insert of BulkUpsert
type UpsertOp struct {
	Selector interface{}
	Updater  interface{}
}

// Mongo abstracts the mongo layer
type Mongo interface {
	// FindOne decodes the first match into result, ErrNotFound if none
	FindOne(ctx ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count returns the number of matching documents
	Count(ctx ctx.Ctx, table domain.Table, selector interface{}) (int, error)

	// Upsert replaces the matching document or inserts update
	Upsert(ctx ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sorts by `sort` ("field" ascending, "-field" descending, "" unsorted).
	// A limit of 0 means no limit.
	Search(ctx ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error

	// RemoveAll deletes every match and returns the deleted count
	RemoveAll(ctx ctx.Ctx, table domain.Table, selector interface{}) (int64, error)

	// BulkUpsert runs unordered replace-or-insert operations
	BulkUpsert(ctx ctx.Ctx, table domain.Table, ops []UpsertOp) (matchedCnt int64, upsertedCnt int64, err error)
}
