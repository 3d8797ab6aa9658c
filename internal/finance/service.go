// Package finance manages clinic transactions and their summary totals.
package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/collection"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusOverdue = "overdue"
)

var (
	ErrMissingDescription  = errors.New("transaction description is required")
	ErrInvalidType         = errors.New("transaction type must be income or expense")
	ErrInvalidStatus       = errors.New("transaction status must be paid, pending or overdue")
	ErrInvalidAmount       = errors.New("transaction amount must be positive")
	ErrTransactionNotFound = errors.New("transaction not found")
)

func validType(t string) bool   { return t == TypeIncome || t == TypeExpense }
func validStatus(s string) bool { return s == StatusPaid || s == StatusPending || s == StatusOverdue }

type CreateTransactionRequest struct {
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
	Category    string  `json:"category,omitempty"`
}

type UpdateTransactionRequest struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Status      *string  `json:"status,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// Summary aggregates the snapshot for the finance screen.
type Summary struct {
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	Balance       float64 `json:"balance"`
	PendingAmount float64 `json:"pending_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
	Transactions  int     `json:"transactions"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
	LoadCollection(ctx context.Context, clinicID string, table collection.Name) error
}

type Service struct {
	store DataStore
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreateTransaction(ctx context.Context, clinicID string, req CreateTransactionRequest) (collection.Record, error) {
	if req.Description == "" {
		return nil, ErrMissingDescription
	}
	if !validType(req.Type) {
		return nil, ErrInvalidType
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	rec := collection.Record{
		"description": req.Description,
		"type":        req.Type,
		"amount":      req.Amount,
		"status":      status,
	}
	if req.DueDate != "" {
		rec["due_date"] = req.DueDate
	}
	if req.Category != "" {
		rec["category"] = req.Category
	}

	created, err := s.store.Create(ctx, clinicID, collection.Transactions, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

func (s *Service) ListTransactions(ctx context.Context, clinicID, status string) ([]collection.Record, error) {
	if status != "" && !validStatus(status) {
		return nil, ErrInvalidStatus
	}
	rows := s.store.Collection(clinicID, collection.Transactions)
	if status == "" {
		return rows, nil
	}
	filtered := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["status"] == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, clinicID, id string, req UpdateTransactionRequest) (collection.Record, error) {
	if _, ok := s.store.Get(clinicID, collection.Transactions, id); !ok {
		return nil, ErrTransactionNotFound
	}
	patch := collection.Record{}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, ErrMissingDescription
		}
		patch["description"] = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, ErrInvalidAmount
		}
		patch["amount"] = *req.Amount
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		patch["status"] = *req.Status
	}
	if req.DueDate != nil {
		patch["due_date"] = *req.DueDate
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if len(patch) == 0 {
		rec, _ := s.store.Get(clinicID, collection.Transactions, id)
		return rec, nil
	}

	updated, err := s.store.Update(ctx, clinicID, collection.Transactions, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Transactions, id); !ok {
		return ErrTransactionNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Transactions, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// Summarize totals the current snapshot.
func (s *Service) Summarize(ctx context.Context, clinicID string) (Summary, error) {
	rows := s.store.Collection(clinicID, collection.Transactions)
	var sum Summary
	sum.Transactions = len(rows)
	for _, r := range rows {
		amount, _ := toFloat(r["amount"])
		switch r["type"] {
		case TypeIncome:
			sum.Income += amount
		case TypeExpense:
			sum.Expenses += amount
		}
		switch r["status"] {
		case StatusPending:
			sum.PendingAmount += amount
		case StatusOverdue:
			sum.OverdueAmount += amount
		}
	}
	sum.Balance = sum.Income - sum.Expenses
	return sum, nil
}

// Refresh re-fetches only the transactions collection, the one screen that
// reloads its own data out of band.
func (s *Service) Refresh(ctx context.Context, clinicID string) error {
	return s.store.LoadCollection(ctx, clinicID, collection.Transactions)
}

// JSON numbers decode as float64; mirror round-trips keep them that way, but
// freshly built records may carry ints.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ServiceInterface defines the contract for finance business logic
type ServiceInterface interface {
	CreateTransaction(ctx context.Context, clinicID string, req CreateTransactionRequest) (collection.Record, error)
	ListTransactions(ctx context.Context, clinicID, status string) ([]collection.Record, error)
	UpdateTransaction(ctx context.Context, clinicID, id string, req UpdateTransactionRequest) (collection.Record, error)
	DeleteTransaction(ctx context.Context, clinicID, id string) error
	Summarize(ctx context.Context, clinicID string) (Summary, error)
	Refresh(ctx context.Context, clinicID string) error
}

var _ ServiceInterface = (*Service)(nil)
