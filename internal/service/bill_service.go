package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing_api/internal/model"
	"billing_api/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrBillNotFound = errors.New("bill not found")
	ErrInvalidID    = errors.New("invalid bill id")
)

// BillService defines owner-scoped operations on bills
type BillService interface {
	CreateBill(ctx context.Context, ownerID string, req model.CreateBillRequest) (*model.Bill, error)
	ListBills(ctx context.Context, ownerID string) ([]model.Bill, error)
	GetBill(ctx context.Context, ownerID, billID string) (*model.Bill, error)
	DeleteBill(ctx context.Context, ownerID, billID string) error
}

type billService struct {
	repo     repository.BillRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(repo repository.BillRepository, logger *zap.Logger) BillService {
	return &billService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *billService) CreateBill(ctx context.Context, ownerID string, req model.CreateBillRequest) (*model.Bill, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError(err)
	}

	items := make([]model.LineItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, model.LineItem{Name: in.Name, Quantity: in.Quantity, Price: *in.Price})
	}

	now := s.now().UTC()
	billDate := now
	if req.Date != nil && !req.Date.IsZero() {
		billDate = req.Date.UTC()
	}

	bill := &model.Bill{
		OwnerID:       ownerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Items:         items,
		TotalAmount:   model.ComputeTotal(items),
		Date:          billDate,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill in repo: %w", err)
	}

	s.logger.Debug("bill created", zap.String("bill_id", bill.ID), zap.String("owner_id", ownerID))
	return bill, nil
}

func (s *billService) ListBills(ctx context.Context, ownerID string) ([]model.Bill, error) {
	bills, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner bills from repo: %w", err)
	}
	return bills, nil
}

func (s *billService) GetBill(ctx context.Context, ownerID, billID string) (*model.Bill, error) {
	bill, err := s.repo.FindByIDForOwner(ctx, ownerID, billID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrInvalidID
		}
		return nil, fmt.Errorf("failed to find bill by ID: %w", err)
	}
	if bill == nil {
		return nil, ErrBillNotFound
	}
	return bill, nil
}

func (s *billService) DeleteBill(ctx context.Context, ownerID, billID string) error {
	deleted, err := s.repo.DeleteByIDForOwner(ctx, ownerID, billID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return ErrInvalidID
		}
		return fmt.Errorf("failed to delete bill in repo: %w", err)
	}
	if !deleted {
		return ErrBillNotFound
	}
	s.logger.Debug("bill deleted", zap.String("bill_id", billID), zap.String("owner_id", ownerID))
	return nil
}
