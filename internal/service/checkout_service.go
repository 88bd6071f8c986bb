package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"perfume-store/internal/model"
	"perfume-store/internal/pricing"
	"perfume-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	addressRepo  repository.AddressRepository
	productRepo  repository.ProductRepository
	feeRepo      repository.FeeRepository
	resolver     CouponResolver
	engine       *pricing.Engine
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	addressRepo repository.AddressRepository,
	productRepo repository.ProductRepository,
	feeRepo repository.FeeRepository,
	resolver CouponResolver,
	engine *pricing.Engine,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		productRepo:  productRepo,
		feeRepo:      feeRepo,
		resolver:     resolver,
		engine:       engine,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout materialises an order from untrusted input as one atomic unit
// of work. Any failure at any step rolls the whole transaction back; no
// partial customer, address, order, or coupon state survives.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	// Validate before any write begins
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()

	// 1. Resolve the customer by email, creating on first checkout.
	customer, err := s.resolveCustomer(ctx, tx, req, now)
	if err != nil {
		return nil, err
	}

	// 2. Record the shipping address. Clearing siblings before inserting
	// a new default keeps the one-default-per-customer invariant inside
	// this transaction.
	address, err := s.createAddress(ctx, tx, customer.ID, req.Address)
	if err != nil {
		return nil, err
	}

	// 3. Resolve the coupon for an applied voucher.
	var coupon *model.Coupon
	coupon, err = s.resolver.Resolve(ctx, tx, customer.ID, req.Voucher)
	if err != nil {
		return nil, err
	}

	// 4. Quote the cart against the fee rows read in this transaction.
	fees, err := s.feeRepo.GetByNames(ctx, tx, []string{model.FeeShipping, model.FeeVAT})
	if err != nil {
		return nil, fmt.Errorf("failed to load fee configuration: %w", err)
	}
	quote := s.engine.Compute(req.Items, fees, req.Voucher)

	// 5. Insert the order.
	order := &model.Order{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		AddressID:     address.ID,
		TotalAmount:   quote.Total,
		Status:        model.OrderPending,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
	}

	if err = s.orderRepo.InsertOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// 6. Insert the line items, resolving or provisioning products.
	details, err := s.buildDetails(ctx, tx, order.ID, req.Items, now)
	if err != nil {
		return nil, err
	}
	if err = s.orderRepo.InsertDetails(ctx, tx, details); err != nil {
		return nil, fmt.Errorf("failed to create order details: %w", err)
	}

	// 7. Consume the coupon only after every row referencing it is
	// staged, so a committed coupon always has a committed order.
	if coupon != nil {
		if err = s.resolver.MarkUsed(ctx, tx, coupon); err != nil {
			return nil, err
		}
	}

	// 8. Commit.
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit checkout")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", customer.ID.String()).
		Str("total", quote.Total.String()).
		Int("item_count", len(details)).
		Bool("coupon_applied", coupon != nil).
		Msg("order created successfully")

	// Respond with committed state, re-read, never the in-memory rows
	// built before commit.
	committed, committedDetails, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back order: %w", err)
	}

	return &model.OrderResponse{Order: committed, Items: committedDetails}, nil
}

// resolveCustomer finds the customer by email and refreshes the mutable
// profile fields, or creates the customer on first checkout. A lost
// create race re-fetches the winning row and proceeds.
func (s *checkoutService) resolveCustomer(ctx context.Context, tx pgx.Tx, req *model.CheckoutRequest, now time.Time) (*model.Customer, error) {
	existing, err := s.customerRepo.GetByEmail(ctx, tx, req.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	if existing != nil {
		if err := s.customerRepo.UpdateProfile(ctx, tx, existing.ID, req.CustomerName, req.CustomerPhone); err != nil {
			return nil, fmt.Errorf("failed to refresh customer profile: %w", err)
		}
		existing.Name = req.CustomerName
		existing.Phone = req.CustomerPhone
		return existing, nil
	}

	customer := &model.Customer{
		ID:         uuid.New(),
		Name:       req.CustomerName,
		Email:      req.CustomerEmail,
		Phone:      req.CustomerPhone,
		Membership: model.DefaultMembership,
		CreatedAt:  now,
	}

	inserted, err := s.customerRepo.Insert(ctx, tx, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if inserted {
		s.logger.Debug().
			Str("customer_id", customer.ID.String()).
			Msg("customer created on first checkout")
		return customer, nil
	}

	// A concurrent checkout created this email between our lookup and
	// insert; re-fetch once and proceed with that row.
	s.logger.Debug().Str("email", req.CustomerEmail).Msg("customer email raced, re-fetching")

	existing, err = s.customerRepo.GetByEmail(ctx, tx, req.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch customer: %w", err)
	}
	if existing == nil {
		return nil, model.ErrCustomerConflict
	}

	if err := s.customerRepo.UpdateProfile(ctx, tx, existing.ID, req.CustomerName, req.CustomerPhone); err != nil {
		return nil, fmt.Errorf("failed to refresh customer profile: %w", err)
	}
	existing.Name = req.CustomerName
	existing.Phone = req.CustomerPhone
	return existing, nil
}

func (s *checkoutService) createAddress(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, input model.AddressInput) (*model.ShippingAddress, error) {
	if input.SetDefault {
		cleared, err := s.addressRepo.ClearDefault(ctx, tx, customerID)
		if err != nil {
			return nil, fmt.Errorf("failed to clear default addresses: %w", err)
		}
		if cleared > 0 {
			s.logger.Debug().
				Str("customer_id", customerID.String()).
				Int64("cleared", cleared).
				Msg("previous default addresses cleared")
		}
	}

	address := &model.ShippingAddress{
		ID:            uuid.New(),
		CustomerID:    customerID,
		RecipientName: input.RecipientName,
		Phone:         input.Phone,
		Province:      input.Province,
		District:      input.District,
		Ward:          input.Ward,
		AddressLine:   input.AddressLine,
		IsDefault:     input.SetDefault,
	}

	if err := s.addressRepo.Insert(ctx, tx, address); err != nil {
		return nil, fmt.Errorf("failed to create shipping address: %w", err)
	}

	return address, nil
}

// buildDetails resolves each cart line to a product by name, capturing
// the cart's unit price rather than the product's current one. A line
// that matches nothing gets a placeholder product so the detail keeps a
// valid reference; the warning is the operator's follow-up signal.
func (s *checkoutService) buildDetails(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.CartItem, now time.Time) ([]model.OrderDetail, error) {
	details := make([]model.OrderDetail, 0, len(items))
	resolved := make(map[string]uuid.UUID, len(items))

	for _, item := range items {
		productID, ok := resolved[item.Name]
		if !ok {
			product, err := s.productRepo.GetByName(ctx, tx, item.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve product: %w", err)
			}

			if product == nil {
				product = &model.Product{
					ID:        uuid.New(),
					Name:      item.Name,
					Price:     item.UnitPrice,
					Stock:     0,
					Published: false,
					CreatedAt: now,
				}
				if err := s.productRepo.Insert(ctx, tx, product); err != nil {
					return nil, fmt.Errorf("failed to provision placeholder product: %w", err)
				}
				s.logger.Warn().
					Str("product_name", item.Name).
					Str("product_id", product.ID.String()).
					Msg("cart line matched no product, placeholder provisioned for follow-up")
			}

			productID = product.ID
			resolved[item.Name] = productID
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		details = append(details, model.OrderDetail{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(qty),
		})
	}

	return details, nil
}

// validateCheckoutRequest rejects malformed input with field-level
// detail before any write begins.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError("request", "checkout request is nil")
	}

	if strings.TrimSpace(req.CustomerEmail) == "" {
		return model.NewValidationError("customerEmail", "email is required")
	}
	if !strings.Contains(req.CustomerEmail, "@") {
		return model.NewValidationError("customerEmail", "email is malformed")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return model.NewValidationError("customerName", "name is required")
	}

	if strings.TrimSpace(req.Address.RecipientName) == "" {
		return model.NewValidationError("address.recipientName", "recipient name is required")
	}
	if strings.TrimSpace(req.Address.AddressLine) == "" {
		return model.NewValidationError("address.addressLine", "address line is required")
	}

	if len(req.Items) == 0 {
		return model.NewValidationError("items", "order must contain at least one item")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return model.NewValidationError(fmt.Sprintf("items[%d].name", i), "product name is required")
		}
		if item.Quantity <= 0 {
			return model.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			return model.NewValidationError(fmt.Sprintf("items[%d].unitPrice", i), "unit price cannot be negative")
		}
	}

	if req.Voucher != nil && strings.TrimSpace(req.Voucher.Code) == "" {
		return model.NewValidationError("voucher.code", "voucher code is required")
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.NewValidationError("paymentMethod", "payment method is required")
	}

	return nil
}
