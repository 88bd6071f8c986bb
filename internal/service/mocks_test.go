package service

import (
	"context"
	"time"

	"perfume-store/internal/model"
	"perfume-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) InsertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertDetails(ctx context.Context, tx pgx.Tx, details []model.OrderDetail) error {
	args := m.Called(ctx, tx, details)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderDetail), args.Error(2)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, updatedAt time.Time) error {
	args := m.Called(ctx, tx, id, status, updatedAt)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of repository.CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*model.Customer, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Insert(ctx context.Context, tx pgx.Tx, customer *model.Customer) (bool, error) {
	args := m.Called(ctx, tx, customer)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) UpdateProfile(ctx context.Context, tx pgx.Tx, id uuid.UUID, name, phone string) error {
	args := m.Called(ctx, tx, id, name, phone)
	return args.Error(0)
}

// MockAddressRepository is a mock implementation of repository.AddressRepository.
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Insert(ctx context.Context, tx pgx.Tx, address *model.ShippingAddress) error {
	args := m.Called(ctx, tx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByName(ctx context.Context, tx pgx.Tx, name string) (*model.Product, error) {
	args := m.Called(ctx, tx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Insert(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	args := m.Called(ctx, tx, product)
	return args.Error(0)
}

// MockFeeRepository is a mock implementation of repository.FeeRepository.
type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) GetByNames(ctx context.Context, tx pgx.Tx, names []string) ([]model.Fee, error) {
	args := m.Called(ctx, tx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Fee), args.Error(1)
}

// MockCouponRepository is a mock implementation of repository.CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	args := m.Called(ctx, tx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error) {
	args := m.Called(ctx, tx, coupon)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, usedAt)
	return args.Bool(0), args.Error(1)
}

// MockWarrantyRepository is a mock implementation of repository.WarrantyRepository.
type MockWarrantyRepository struct {
	mock.Mock
}

func (m *MockWarrantyRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWarrantyRepository) EligibleDetails(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]repository.WarrantyCandidate, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.WarrantyCandidate), args.Error(1)
}

func (m *MockWarrantyRepository) Insert(ctx context.Context, tx pgx.Tx, warranty *model.Warranty) error {
	args := m.Called(ctx, tx, warranty)
	return args.Error(0)
}

func (m *MockWarrantyRepository) ListByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.Warranty, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Warranty), args.Error(1)
}

func (m *MockWarrantyRepository) DeleteClaims(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, warrantyIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarrantyRepository) Delete(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, warrantyIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarrantyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus, updatedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockWarrantyRepository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarrantyRepository) FindExpiringSoon(ctx context.Context, now time.Time, withinDays int) ([]model.Warranty, error) {
	args := m.Called(ctx, now, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Warranty), args.Error(1)
}

// MockCouponResolver is a mock implementation of CouponResolver.
type MockCouponResolver struct {
	mock.Mock
}

func (m *MockCouponResolver) Resolve(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, voucher *model.Voucher) (*model.Coupon, error) {
	args := m.Called(ctx, tx, customerID, voucher)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponResolver) MarkUsed(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) error {
	args := m.Called(ctx, tx, coupon)
	return args.Error(0)
}

// MockWarrantyService is a mock implementation of WarrantyService.
type MockWarrantyService struct {
	mock.Mock
}

func (m *MockWarrantyService) CreateForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) DeleteForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockWarrantyService) ExpireOutdated(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockWarrantyService) FindExpiringSoon(ctx context.Context, withinDays int) ([]model.Warranty, error) {
	args := m.Called(ctx, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Warranty), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
