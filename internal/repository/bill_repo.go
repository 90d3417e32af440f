package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"billing_api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillRepository defines operations for bill data.
// Every method is scoped to the owner; a bill belonging to somebody else is
// reported exactly like a bill that does not exist.
type BillRepository interface {
	// Create computes the total, stores bill and assigns ID and CreatedAt.
	Create(ctx context.Context, bill *model.Bill) error
	// ListByOwner returns the owner's bills, newest date first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Bill, error)
	// FindByIDForOwner returns nil, nil when no such bill exists for the owner.
	FindByIDForOwner(ctx context.Context, ownerID, billID string) (*model.Bill, error)
	// DeleteByIDForOwner reports whether a bill was deleted.
	DeleteByIDForOwner(ctx context.Context, ownerID, billID string) (bool, error)
}

const billColumns = `id, owner_id, customer_name, customer_phone, customer_email, items, total_amount, bill_date, created_at`

type billRepository struct {
	db DBTX
}

// NewBillRepository creates a postgres-backed BillRepository
func NewBillRepository(db DBTX) BillRepository {
	return &billRepository{db: db}
}

// Create inserts a new bill into the database
func (r *billRepository) Create(ctx context.Context, b *model.Bill) error {
	ownerID, err := uuid.Parse(b.OwnerID)
	if err != nil {
		return fmt.Errorf("owner: %w", ErrInvalidID)
	}
	if b.Items == nil {
		b.Items = []model.LineItem{}
	}
	b.TotalAmount = model.ComputeTotal(b.Items)
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("failed to encode bill items: %w", err)
	}

	id := uuid.New()
	sql := `INSERT INTO bills (id, owner_id, customer_name, customer_phone, customer_email, items, total_amount, bill_date, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`
	err = r.db.QueryRow(ctx, sql, id.String(), ownerID.String(), b.CustomerName, b.CustomerPhone, b.CustomerEmail,
		items, b.TotalAmount, b.Date, b.CreatedAt).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	b.ID = id.String()
	b.OwnerID = ownerID.String()
	return nil
}

// ListByOwner retrieves all bills of an owner, most recent first
func (r *billRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Bill, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", ErrInvalidID)
	}
	// seq breaks ties between bills sharing a date: later inserts first
	sql := `SELECT ` + billColumns + ` FROM bills WHERE owner_id = $1 ORDER BY bill_date DESC, seq DESC`
	rows, err := r.db.Query(ctx, sql, oid.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query bills by owner: %w", err)
	}
	defer rows.Close()

	bills := []model.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		bills = append(bills, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", err)
	}
	return bills, nil
}

// FindByIDForOwner retrieves one bill if it belongs to the owner
func (r *billRepository) FindByIDForOwner(ctx context.Context, ownerID, billID string) (*model.Bill, error) {
	bid, oid, err := parseBillKeys(ownerID, billID)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + billColumns + ` FROM bills WHERE id = $1 AND owner_id = $2`
	b, err := scanBill(r.db.QueryRow(ctx, sql, bid, oid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bill by ID: %w", err)
	}
	return b, nil
}

// DeleteByIDForOwner removes one bill if it belongs to the owner
func (r *billRepository) DeleteByIDForOwner(ctx context.Context, ownerID, billID string) (bool, error) {
	bid, oid, err := parseBillKeys(ownerID, billID)
	if err != nil {
		return false, err
	}
	sql := `DELETE FROM bills WHERE id = $1 AND owner_id = $2`
	cmdTag, err := r.db.Exec(ctx, sql, bid, oid)
	if err != nil {
		return false, fmt.Errorf("failed to delete bill: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func parseBillKeys(ownerID, billID string) (string, string, error) {
	bid, err := uuid.Parse(billID)
	if err != nil {
		return "", "", ErrInvalidID
	}
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return "", "", fmt.Errorf("owner: %w", ErrInvalidID)
	}
	return bid.String(), oid.String(), nil
}

func scanBill(row pgx.Row) (*model.Bill, error) {
	var (
		b     model.Bill
		items []byte
	)
	if err := row.Scan(&b.ID, &b.OwnerID, &b.CustomerName, &b.CustomerPhone, &b.CustomerEmail,
		&items, &b.TotalAmount, &b.Date, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("failed to decode bill items: %w", err)
	}
	if b.Items == nil {
		b.Items = []model.LineItem{}
	}
	return &b, nil
}
