package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"perfume-store/internal/config"
	"perfume-store/internal/model"
	"perfume-store/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutMocks struct {
	orderRepo    *MockOrderRepository
	customerRepo *MockCustomerRepository
	addressRepo  *MockAddressRepository
	productRepo  *MockProductRepository
	feeRepo      *MockFeeRepository
	resolver     *MockCouponResolver
	tx           *MockTx
}

func newCheckoutService(t *testing.T) (CheckoutService, *checkoutMocks) {
	t.Helper()

	m := &checkoutMocks{
		orderRepo:    new(MockOrderRepository),
		customerRepo: new(MockCustomerRepository),
		addressRepo:  new(MockAddressRepository),
		productRepo:  new(MockProductRepository),
		feeRepo:      new(MockFeeRepository),
		resolver:     new(MockCouponResolver),
		tx:           new(MockTx),
	}

	engine := pricing.NewEngine(config.PricingConfig{
		FallbackShippingFee:       30000,
		FallbackShippingThreshold: 5000000,
		FreeShipMinimum:           500000,
		CouponExpiryDays:          30,
	}, zerolog.Nop())

	svc := NewCheckoutService(
		m.orderRepo, m.customerRepo, m.addressRepo, m.productRepo, m.feeRepo,
		m.resolver, engine, zerolog.Nop(),
	)

	return svc, m
}

func validCheckoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		CustomerName:  "Lan Pham",
		CustomerEmail: "lan@example.com",
		CustomerPhone: "0901234567",
		Address: model.AddressInput{
			RecipientName: "Lan Pham",
			Phone:         "0901234567",
			Province:      "Ho Chi Minh",
			District:      "District 1",
			Ward:          "Ben Nghe",
			AddressLine:   "12 Le Loi",
			SetDefault:    true,
		},
		Items: []model.CartItem{
			{Name: "Rose EDP", Quantity: 2, UnitPrice: decimal.NewFromInt(500000)},
		},
		PaymentMethod: "cod",
	}
}

func standardFees() []model.Fee {
	threshold := decimal.NewFromInt(5000000)
	return []model.Fee{
		{ID: uuid.New(), Name: model.FeeShipping, Value: decimal.NewFromInt(30000), Threshold: &threshold},
		{ID: uuid.New(), Name: model.FeeVAT, Value: decimal.NewFromInt(10)},
	}
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()

	product := &model.Product{ID: uuid.New(), Name: "Rose EDP", Price: decimal.NewFromInt(550000), Published: true}

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(true, nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, mock.AnythingOfType("uuid.UUID")).Return(int64(0), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, mock.AnythingOfType("uuid.UUID"), (*model.Voucher)(nil)).Return(nil, nil)
	m.feeRepo.On("GetByNames", ctx, m.tx, []string{model.FeeShipping, model.FeeVAT}).Return(standardFees(), nil)
	m.orderRepo.On("InsertOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.productRepo.On("GetByName", ctx, m.tx, "Rose EDP").Return(product, nil)
	m.orderRepo.On("InsertDetails", ctx, m.tx, mock.AnythingOfType("[]model.OrderDetail")).Return(nil)
	m.tx.On("Commit", ctx).Return(nil)

	committed := &model.Order{ID: uuid.New(), Status: model.OrderPending, TotalAmount: decimal.NewFromInt(1130000)}
	m.orderRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(committed, []model.OrderDetail{{ProductID: product.ID, Quantity: 2}}, nil)

	resp, err := svc.Checkout(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, committed.ID, resp.Order.ID)
	assert.Len(t, resp.Items, 1)

	// The order row must carry the quoted total.
	insertedOrder := m.orderRepo.Calls[1].Arguments.Get(2).(*model.Order)
	assert.True(t, decimal.NewFromInt(1130000).Equal(insertedOrder.TotalAmount),
		"total: got %s", insertedOrder.TotalAmount)
	assert.Equal(t, model.OrderPending, insertedOrder.Status)

	// The line item keeps the cart's unit price, not the product's
	// current (different) price.
	insertedDetails := m.orderRepo.Calls[2].Arguments.Get(2).([]model.OrderDetail)
	require.Len(t, insertedDetails, 1)
	assert.True(t, decimal.NewFromInt(500000).Equal(insertedDetails[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(1000000).Equal(insertedDetails[0].LineTotal))

	m.orderRepo.AssertExpectations(t)
	m.customerRepo.AssertExpectations(t)
	m.addressRepo.AssertExpectations(t)
	m.productRepo.AssertExpectations(t)
	m.tx.AssertExpectations(t)
}

func TestCheckoutService_Checkout_WithCoupon(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()
	req.Voucher = &model.Voucher{Code: "SUMMER30", Type: model.VoucherAmount, Value: decimal.NewFromInt(30000)}

	product := &model.Product{ID: uuid.New(), Name: "Rose EDP", Published: true}
	coupon := &model.Coupon{ID: uuid.New(), Code: "SUMMER30", Amount: decimal.NewFromInt(30000)}

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(true, nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, mock.AnythingOfType("uuid.UUID")).Return(int64(1), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, mock.AnythingOfType("uuid.UUID"), req.Voucher).Return(coupon, nil)
	m.feeRepo.On("GetByNames", ctx, m.tx, []string{model.FeeShipping, model.FeeVAT}).Return(standardFees(), nil)
	m.orderRepo.On("InsertOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.productRepo.On("GetByName", ctx, m.tx, "Rose EDP").Return(product, nil)
	m.orderRepo.On("InsertDetails", ctx, m.tx, mock.AnythingOfType("[]model.OrderDetail")).Return(nil)
	m.resolver.On("MarkUsed", ctx, m.tx, coupon).Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.orderRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(&model.Order{ID: uuid.New(), CouponID: &coupon.ID}, []model.OrderDetail{}, nil)

	resp, err := svc.Checkout(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)

	// Order references the coupon and the discount reduced the total:
	// 1,000,000 - 30,000 + 30,000 shipping + 100,000 VAT.
	insertedOrder := m.orderRepo.Calls[1].Arguments.Get(2).(*model.Order)
	require.NotNil(t, insertedOrder.CouponID)
	assert.Equal(t, coupon.ID, *insertedOrder.CouponID)
	assert.True(t, decimal.NewFromInt(1100000).Equal(insertedOrder.TotalAmount),
		"total: got %s", insertedOrder.TotalAmount)

	m.resolver.AssertCalled(t, "MarkUsed", ctx, m.tx, coupon)
	m.tx.AssertExpectations(t)
}

func TestCheckoutService_Checkout_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.CheckoutRequest)
		field  string
	}{
		{"Missing email", func(r *model.CheckoutRequest) { r.CustomerEmail = "" }, "customerEmail"},
		{"Malformed email", func(r *model.CheckoutRequest) { r.CustomerEmail = "not-an-email" }, "customerEmail"},
		{"Missing name", func(r *model.CheckoutRequest) { r.CustomerName = "  " }, "customerName"},
		{"Missing recipient", func(r *model.CheckoutRequest) { r.Address.RecipientName = "" }, "address.recipientName"},
		{"Missing address line", func(r *model.CheckoutRequest) { r.Address.AddressLine = "" }, "address.addressLine"},
		{"Empty cart", func(r *model.CheckoutRequest) { r.Items = nil }, "items"},
		{"Zero quantity", func(r *model.CheckoutRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"Negative price", func(r *model.CheckoutRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(-1) }, "items[0].unitPrice"},
		{"Blank voucher code", func(r *model.CheckoutRequest) { r.Voucher = &model.Voucher{Code: " "} }, "voucher.code"},
		{"Missing payment method", func(r *model.CheckoutRequest) { r.PaymentMethod = "" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCheckoutService(t)
			req := validCheckoutRequest()
			tt.mutate(req)

			resp, err := svc.Checkout(ctx, req)

			require.Error(t, err)
			assert.Nil(t, resp)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)

			// Rejected before any write begins.
			m.orderRepo.AssertNotCalled(t, "BeginTx", ctx)
		})
	}
}

func TestCheckoutService_Checkout_RollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()

	storeErr := errors.New("connection reset")

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(true, nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, mock.AnythingOfType("uuid.UUID")).Return(int64(0), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, mock.AnythingOfType("uuid.UUID"), (*model.Voucher)(nil)).Return(nil, nil)
	m.feeRepo.On("GetByNames", ctx, m.tx, []string{model.FeeShipping, model.FeeVAT}).Return(standardFees(), nil)
	m.orderRepo.On("InsertOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(storeErr)
	m.tx.On("Rollback", ctx).Return(nil)

	resp, err := svc.Checkout(ctx, req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, m.tx.rolledBack, "transaction must roll back on failure")
	assert.False(t, m.tx.committed)
	m.orderRepo.AssertNotCalled(t, "InsertDetails", ctx, m.tx, mock.Anything)
	m.orderRepo.AssertNotCalled(t, "GetByID", ctx, mock.Anything)
}

func TestCheckoutService_Checkout_CustomerRaceRefetches(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()

	winner := &model.Customer{
		ID:         uuid.New(),
		Name:       "Old Name",
		Email:      "lan@example.com",
		Membership: model.DefaultMembership,
		CreatedAt:  time.Now(),
	}
	product := &model.Product{ID: uuid.New(), Name: "Rose EDP", Published: true}

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	// First lookup misses, the insert loses the race, re-fetch wins.
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil).Once()
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(false, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(winner, nil).Once()
	m.customerRepo.On("UpdateProfile", ctx, m.tx, winner.ID, "Lan Pham", "0901234567").Return(nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, winner.ID).Return(int64(0), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, winner.ID, (*model.Voucher)(nil)).Return(nil, nil)
	m.feeRepo.On("GetByNames", ctx, m.tx, []string{model.FeeShipping, model.FeeVAT}).Return(standardFees(), nil)
	m.orderRepo.On("InsertOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.productRepo.On("GetByName", ctx, m.tx, "Rose EDP").Return(product, nil)
	m.orderRepo.On("InsertDetails", ctx, m.tx, mock.AnythingOfType("[]model.OrderDetail")).Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.orderRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(&model.Order{ID: uuid.New(), CustomerID: winner.ID}, []model.OrderDetail{}, nil)

	resp, err := svc.Checkout(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, winner.ID, resp.Order.CustomerID)
	m.customerRepo.AssertExpectations(t)
}

func TestCheckoutService_Checkout_CustomerRaceStillConflicting(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(false, nil)
	m.tx.On("Rollback", ctx).Return(nil)

	resp, err := svc.Checkout(ctx, req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrCustomerConflict)
	assert.True(t, m.tx.rolledBack)
}

func TestCheckoutService_Checkout_PlaceholderProduct(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()
	req.Items = []model.CartItem{
		{Name: "Discontinued Oud", Quantity: 1, UnitPrice: decimal.NewFromInt(800000)},
	}

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(true, nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, mock.AnythingOfType("uuid.UUID")).Return(int64(0), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, mock.AnythingOfType("uuid.UUID"), (*model.Voucher)(nil)).Return(nil, nil)
	m.feeRepo.On("GetByNames", ctx, m.tx, []string{model.FeeShipping, model.FeeVAT}).Return(standardFees(), nil)
	m.orderRepo.On("InsertOrder", ctx, m.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.productRepo.On("GetByName", ctx, m.tx, "Discontinued Oud").Return(nil, nil)
	m.productRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Product")).Return(nil)
	m.orderRepo.On("InsertDetails", ctx, m.tx, mock.AnythingOfType("[]model.OrderDetail")).Return(nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.orderRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(&model.Order{ID: uuid.New()}, []model.OrderDetail{}, nil)

	resp, err := svc.Checkout(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)

	// The placeholder is unpublished with zero stock so it cannot be
	// sold until an operator fixes it up.
	placeholder := m.productRepo.Calls[1].Arguments.Get(2).(*model.Product)
	assert.Equal(t, "Discontinued Oud", placeholder.Name)
	assert.False(t, placeholder.Published)
	assert.Zero(t, placeholder.Stock)

	m.productRepo.AssertExpectations(t)
}

func TestCheckoutService_Checkout_UsedCouponRejected(t *testing.T) {
	ctx := context.Background()
	svc, m := newCheckoutService(t)
	req := validCheckoutRequest()
	req.Voucher = &model.Voucher{Code: "SPENT", Type: model.VoucherAmount, Value: decimal.NewFromInt(50000)}

	m.orderRepo.On("BeginTx", ctx).Return(m.tx, nil)
	m.customerRepo.On("GetByEmail", ctx, m.tx, "lan@example.com").Return(nil, nil)
	m.customerRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.Customer")).Return(true, nil)
	m.addressRepo.On("ClearDefault", ctx, m.tx, mock.AnythingOfType("uuid.UUID")).Return(int64(0), nil)
	m.addressRepo.On("Insert", ctx, m.tx, mock.AnythingOfType("*model.ShippingAddress")).Return(nil)
	m.resolver.On("Resolve", ctx, m.tx, mock.AnythingOfType("uuid.UUID"), req.Voucher).
		Return(nil, model.ErrCouponAlreadyUsed)
	m.tx.On("Rollback", ctx).Return(nil)

	resp, err := svc.Checkout(ctx, req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrCouponAlreadyUsed)
	assert.True(t, m.tx.rolledBack)
	m.orderRepo.AssertNotCalled(t, "InsertOrder", ctx, m.tx, mock.Anything)
}
