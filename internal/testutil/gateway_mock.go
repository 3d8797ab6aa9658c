package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/gateway"
)

// ErrGatewayDown simulates a connectivity failure.
var ErrGatewayDown = errors.New("connection refused")

// MemoryGateway is an in-memory Gateway backed by a map, keyed
// clinicID:table. Set Fail to make every call return ErrGatewayDown, the way
// an unreachable backend would.
type MemoryGateway struct {
	mu   sync.Mutex
	rows map[string][]collection.Record

	Fail bool

	// Calls counts operations by name, for bypass assertions.
	Calls map[string]int
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		rows:  make(map[string][]collection.Record),
		Calls: make(map[string]int),
	}
}

var _ gateway.Gateway = (*MemoryGateway)(nil)

// Seed installs records directly, bypassing Insert.
func (g *MemoryGateway) Seed(clinicID string, table collection.Name, recs ...collection.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := collection.Key(clinicID, table)
	for _, rec := range recs {
		g.rows[key] = append(g.rows[key], rec.Clone())
	}
}

func (g *MemoryGateway) List(ctx context.Context, clinicID string, table collection.Name) ([]collection.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls["List"]++
	if g.Fail {
		return nil, ErrGatewayDown
	}
	rows := g.rows[collection.Key(clinicID, table)]
	out := make([]collection.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (g *MemoryGateway) Insert(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls["Insert"]++
	if g.Fail {
		return nil, ErrGatewayDown
	}
	key := collection.Key(clinicID, table)
	g.rows[key] = append(g.rows[key], rec.Clone())
	return rec.Clone(), nil
}

func (g *MemoryGateway) Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls["Update"]++
	if g.Fail {
		return nil, ErrGatewayDown
	}
	key := collection.Key(clinicID, table)
	for i, r := range g.rows[key] {
		if r.ID() == id {
			merged := collection.Overlay(r, patch)
			g.rows[key][i] = merged
			return merged.Clone(), nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (g *MemoryGateway) Delete(ctx context.Context, clinicID string, table collection.Name, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls["Delete"]++
	if g.Fail {
		return ErrGatewayDown
	}
	key := collection.Key(clinicID, table)
	for i, r := range g.rows[key] {
		if r.ID() == id {
			g.rows[key] = append(g.rows[key][:i], g.rows[key][i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}
