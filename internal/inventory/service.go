// Package inventory tracks supplies: quantity on hand against a minimum
// threshold, with a low-stock listing for the dashboard.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingName      = errors.New("item name is required")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrItemNotFound     = errors.New("inventory item not found")
)

type CreateItemRequest struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
	Unit         string `json:"unit,omitempty"`
	Category     string `json:"category,omitempty"`
}

type UpdateItemRequest struct {
	Name         *string `json:"name,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`
	MinThreshold *int    `json:"min_threshold,omitempty"`
	Unit         *string `json:"unit,omitempty"`
	Category     *string `json:"category,omitempty"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}

type Service struct {
	store DataStore
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreateItem(ctx context.Context, clinicID string, req CreateItemRequest) (collection.Record, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if req.Quantity < 0 || req.MinThreshold < 0 {
		return nil, ErrNegativeQuantity
	}

	rec := collection.Record{
		"name":          req.Name,
		"quantity":      req.Quantity,
		"min_threshold": req.MinThreshold,
	}
	if req.Unit != "" {
		rec["unit"] = req.Unit
	}
	if req.Category != "" {
		rec["category"] = req.Category
	}

	created, err := s.store.Create(ctx, clinicID, collection.Inventory, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return created, nil
}

func (s *Service) ListItems(ctx context.Context, clinicID string) ([]collection.Record, error) {
	return s.store.Collection(clinicID, collection.Inventory), nil
}

// ListLowStock returns items at or below their minimum threshold.
func (s *Service) ListLowStock(ctx context.Context, clinicID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Inventory)
	low := make([]collection.Record, 0)
	for _, r := range rows {
		qty, ok1 := toInt(r["quantity"])
		min, ok2 := toInt(r["min_threshold"])
		if ok1 && ok2 && qty <= min {
			low = append(low, r)
		}
	}
	return low, nil
}

func (s *Service) UpdateItem(ctx context.Context, clinicID, id string, req UpdateItemRequest) (collection.Record, error) {
	if _, ok := s.store.Get(clinicID, collection.Inventory, id); !ok {
		return nil, ErrItemNotFound
	}
	patch := collection.Record{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrMissingName
		}
		patch["name"] = *req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
		patch["quantity"] = *req.Quantity
	}
	if req.MinThreshold != nil {
		if *req.MinThreshold < 0 {
			return nil, ErrNegativeQuantity
		}
		patch["min_threshold"] = *req.MinThreshold
	}
	if req.Unit != nil {
		patch["unit"] = *req.Unit
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if len(patch) == 0 {
		rec, _ := s.store.Get(clinicID, collection.Inventory, id)
		return rec, nil
	}

	updated, err := s.store.Update(ctx, clinicID, collection.Inventory, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Inventory, id); !ok {
		return ErrItemNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Inventory, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// ServiceInterface defines the contract for inventory business logic
type ServiceInterface interface {
	CreateItem(ctx context.Context, clinicID string, req CreateItemRequest) (collection.Record, error)
	ListItems(ctx context.Context, clinicID string) ([]collection.Record, error)
	ListLowStock(ctx context.Context, clinicID string) ([]collection.Record, error)
	UpdateItem(ctx context.Context, clinicID, id string, req UpdateItemRequest) (collection.Record, error)
	DeleteItem(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
