package service

import (
	"context"
	"sort"
	"sync"

	"billing_api/internal/model"
	"billing_api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memUserRepo is an in-memory UserRepository with a unique email index
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*model.User{}, byEmail: map[string]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	cp := *user
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// memBillRepo is an in-memory BillRepository honoring owner scoping
type memBillRepo struct {
	mu    sync.Mutex
	seq   int
	bills []storedBill
}

type storedBill struct {
	seq  int
	bill model.Bill
}

func (r *memBillRepo) Create(_ context.Context, b *model.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = uuid.NewString()
	b.TotalAmount = model.ComputeTotal(b.Items)
	r.bills = append(r.bills, storedBill{seq: r.seq, bill: *b})
	return nil
}

func (r *memBillRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []storedBill
	for _, sb := range r.bills {
		if sb.bill.OwnerID == ownerID {
			owned = append(owned, sb)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if !owned[i].bill.Date.Equal(owned[j].bill.Date) {
			return owned[i].bill.Date.After(owned[j].bill.Date)
		}
		return owned[i].seq > owned[j].seq
	})
	out := make([]model.Bill, 0, len(owned))
	for _, sb := range owned {
		out = append(out, sb.bill)
	}
	return out, nil
}

func (r *memBillRepo) FindByIDForOwner(_ context.Context, ownerID, billID string) (*model.Bill, error) {
	if _, err := uuid.Parse(billID); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sb := range r.bills {
		if sb.bill.ID == billID && sb.bill.OwnerID == ownerID {
			b := sb.bill
			return &b, nil
		}
	}
	return nil, nil
}

func (r *memBillRepo) DeleteByIDForOwner(_ context.Context, ownerID, billID string) (bool, error) {
	if _, err := uuid.Parse(billID); err != nil {
		return false, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sb := range r.bills {
		if sb.bill.ID == billID && sb.bill.OwnerID == ownerID {
			r.bills = append(r.bills[:i], r.bills[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// mockUserRepo lets tests script repository failures
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

// mockBillRepo lets tests script repository failures
type mockBillRepo struct {
	mock.Mock
}

func (m *mockBillRepo) Create(ctx context.Context, bill *model.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *mockBillRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Bill, error) {
	args := m.Called(ctx, ownerID)
	bills, _ := args.Get(0).([]model.Bill)
	return bills, args.Error(1)
}

func (m *mockBillRepo) FindByIDForOwner(ctx context.Context, ownerID, billID string) (*model.Bill, error) {
	args := m.Called(ctx, ownerID, billID)
	bill, _ := args.Get(0).(*model.Bill)
	return bill, args.Error(1)
}

func (m *mockBillRepo) DeleteByIDForOwner(ctx context.Context, ownerID, billID string) (bool, error) {
	args := m.Called(ctx, ownerID, billID)
	return args.Bool(0), args.Error(1)
}
