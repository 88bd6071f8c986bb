// Package pricing computes checkout totals. Compute is a pure function
// of the cart, the fee configuration, and the optional voucher; the only
// side channel is a log line when a fee row is missing and the configured
// fallback is used instead.
package pricing

import (
	"perfume-store/internal/config"
	"perfume-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is the derived monetary breakdown of a cart.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	VAT         decimal.Decimal `json:"vat"`
	Total       decimal.Decimal `json:"total"`
}

// Engine computes quotes using store fee rows with configured fallbacks.
type Engine struct {
	fallbackShippingFee       decimal.Decimal
	fallbackShippingThreshold decimal.Decimal
	freeShipMinimum           decimal.Decimal
	logger                    zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine(cfg config.PricingConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		fallbackShippingFee:       decimal.NewFromInt(cfg.FallbackShippingFee),
		fallbackShippingThreshold: decimal.NewFromInt(cfg.FallbackShippingThreshold),
		freeShipMinimum:           decimal.NewFromInt(cfg.FreeShipMinimum),
		logger:                    logger.With().Str("component", "pricing").Logger(),
	}
}

// Compute derives the quote for a cart. An empty cart quotes all zeros.
// Discount never exceeds the subtotal, so Total cannot go negative from a
// voucher alone. VAT applies to the pre-discount subtotal.
func (e *Engine) Compute(items []model.CartItem, fees []model.Fee, voucher *model.Voucher) Quote {
	subtotal := calcSubtotal(items)
	if subtotal.IsZero() {
		return Quote{
			Subtotal:    decimal.Zero,
			Discount:    decimal.Zero,
			ShippingFee: decimal.Zero,
			VAT:         decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	feeByName := make(map[string]model.Fee, len(fees))
	for _, fee := range fees {
		feeByName[fee.Name] = fee
	}

	discount := e.calcDiscount(subtotal, voucher)
	shipping := e.calcShipping(subtotal, feeByName, voucher)
	vat := e.calcVAT(subtotal, feeByName)

	return Quote{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shipping,
		VAT:         vat,
		Total:       subtotal.Sub(discount).Add(shipping).Add(vat),
	}
}

// calcSubtotal returns the sum of quantity * unit price across all items.
func calcSubtotal(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum
}

func (e *Engine) calcDiscount(subtotal decimal.Decimal, voucher *model.Voucher) decimal.Decimal {
	if voucher == nil {
		return decimal.Zero
	}

	switch voucher.Type {
	case model.VoucherPercent:
		percent := decimal.Min(voucher.Value, hundred)
		return subtotal.Mul(percent).Div(hundred)
	case model.VoucherAmount:
		// Discount is capped at the subtotal.
		return decimal.Min(voucher.Value, subtotal)
	case model.VoucherFreeShip:
		return decimal.Zero
	default:
		e.logger.Warn().
			Str("voucher_code", voucher.Code).
			Str("voucher_type", string(voucher.Type)).
			Msg("unknown voucher type, no discount applied")
		return decimal.Zero
	}
}

func (e *Engine) calcShipping(subtotal decimal.Decimal, fees map[string]model.Fee, voucher *model.Voucher) decimal.Decimal {
	// A freeship voucher only waives shipping once the subtotal reaches
	// the free-shipping minimum.
	if voucher != nil && voucher.Type == model.VoucherFreeShip &&
		subtotal.GreaterThanOrEqual(e.freeShipMinimum) {
		return decimal.Zero
	}

	fee, ok := fees[model.FeeShipping]
	if !ok {
		e.logger.Warn().
			Str("fee", model.FeeShipping).
			Str("fallback_fee", e.fallbackShippingFee.String()).
			Msg("fee configuration missing, using fallback")
		if subtotal.GreaterThanOrEqual(e.fallbackShippingThreshold) {
			return decimal.Zero
		}
		return e.fallbackShippingFee
	}

	if fee.Threshold != nil && subtotal.GreaterThanOrEqual(*fee.Threshold) {
		return decimal.Zero
	}
	return fee.Value
}

func (e *Engine) calcVAT(subtotal decimal.Decimal, fees map[string]model.Fee) decimal.Decimal {
	fee, ok := fees[model.FeeVAT]
	if !ok {
		e.logger.Warn().
			Str("fee", model.FeeVAT).
			Msg("fee configuration missing, no VAT applied")
		return decimal.Zero
	}

	percent := decimal.Min(fee.Value, hundred)
	return subtotal.Mul(percent).Div(hundred)
}
