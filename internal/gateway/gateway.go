// Package gateway is the access layer for the remote relational backend. The
// backend schema is deliberately opaque to the rest of the service: every
// collection is a set of JSONB rows keyed by id and scoped by clinic id, and
// the reconciling store only ever talks to the Gateway interface.
package gateway

import (
	"context"
	"errors"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Gateway is the request/response surface over the remote backend. Every
// operation may fail with a connectivity or validation error; the store
// decides what happens next.
type Gateway interface {
	List(ctx context.Context, clinicID string, table collection.Name) ([]collection.Record, error)
	Insert(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}
