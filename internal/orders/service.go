package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/internal/pricing"
	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

// defaultCommissionRate applies when a creator has no profile row.
var defaultCommissionRate = decimal.NewFromFloat(0.30)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogReader resolves SKUs for snapshotting at intake and replacement.
type CatalogReader interface {
	LookupMany(ctx context.Context, skus []string) (map[string]models.Product, error)
}

// StockWriter records ledger movements inside the order transaction.
type StockWriter interface {
	Deduct(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error
	ApplyDelta(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, delta map[string]int) error
}

// ProfileReader resolves creators' current commission rates for read-side
// financials.
type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error)
}

// Service owns the order lifecycle: intake, edits, item replacement, and
// computed detail reads.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDetail, error)
	Get(ctx context.Context, actor Actor, idOrCode string) (*OrderDetail, error)
	List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) ([]OrderDetail, error)
	Update(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDetail, error)
	ReplaceItems(ctx context.Context, actor Actor, orderID uuid.UUID, input ReplaceItemsInput) (*OrderDetail, error)
}

type service struct {
	repo     Repository
	catalog  CatalogReader
	stock    StockWriter
	profiles ProfileReader
	rates    pricing.RateTable
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, catalog CatalogReader, stock StockWriter, profiles ProfileReader, rates pricing.RateTable, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock writer required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile reader required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate table required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		catalog:  catalog,
		stock:    stock,
		profiles: profiles,
		rates:    rates,
		tx:       tx,
		logg:     logg,
	}, nil
}

// canEdit is the single authorization check every mutating operation uses.
// Owners and admins edit anything; staff edit only their own orders.
func canEdit(actor Actor, order *models.Order) bool {
	if actor.Role.IsOwner() {
		return true
	}
	return order.CreatedBy == actor.ID
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDetail, error) {
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required").
			WithDetails(map[string]string{"field": "customer_name"})
	}

	channel, err := enums.ParseChannel(input.Channel)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
			WithDetails(map[string]string{"field": "channel"})
	}

	phone := trimPtr(input.PhoneNumber)
	if channel == enums.ChannelWalkin && phone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required for walk-in orders").
			WithDetails(map[string]string{"field": "phone_number"})
	}

	// the channel is authoritative for region and shipping
	var region *enums.Region
	shippingPaid := decimal.Zero
	courierCost := decimal.Zero
	if channel == enums.ChannelOnline {
		if input.Region == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "region is required for online orders").
				WithDetails(map[string]string{"field": "region"})
		}
		parsed, err := enums.ParseRegion(*input.Region)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
				WithDetails(map[string]string{"field": "region"})
		}
		region = &parsed

		if input.ShippingPaid.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping paid cannot be negative").
				WithDetails(map[string]string{"field": "shipping_paid"})
		}
		shippingPaid = input.ShippingPaid

		courierCost, err = s.rates.CourierCost(parsed)
		if err != nil {
			return nil, err
		}
	}

	lines, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}

	items, subtotal, err := s.snapshotItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	if err := pricing.ValidateDiscount(input.DiscountAmount, input.DiscountReason, subtotal); err != nil {
		return nil, err
	}

	order := &models.Order{
		Channel:        channel,
		Status:         enums.OrderStatusPending,
		CustomerName:   customerName,
		ProfileLink:    trimPtr(input.ProfileLink),
		PhoneNumber:    phone,
		Notes:          trimPtr(input.Notes),
		Region:         region,
		ShippingPaid:   shippingPaid,
		CourierCost:    courierCost,
		DiscountAmount: input.DiscountAmount,
		DiscountReason: trimPtr(input.DiscountReason),
		CreatedBy:      actor.ID,
	}
	if input.DiscountAmount.IsPositive() {
		now := time.Now()
		order.DiscountUpdatedBy = &actor.ID
		order.DiscountUpdatedAt = &now
	}
	order.Items = items

	// order row, line snapshots, and stock deductions commit together
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		code, err := txRepo.NextOrderCode(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating order code")
		}
		order.OrderCode = code
		if err := txRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
		}
		return s.stock.Deduct(ctx, tx, order.ID, actor.ID, order.Items)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderCode(ctx, order.OrderCode), "order created")
	}
	return s.detail(ctx, order), nil
}

func (s *service) Get(ctx context.Context, actor Actor, idOrCode string) (*OrderDetail, error) {
	order, err := s.find(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	// staff get a uniform not-found for orders they cannot access, so the
	// existence of other staff members' orders does not leak
	if !canEdit(actor, order) {
		return nil, notFound(idOrCode)
	}
	return s.detail(ctx, order), nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) ([]OrderDetail, error) {
	if !actor.Role.IsOwner() {
		filters.CreatedBy = &actor.ID
	}

	rows, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}

	creatorIDs := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for _, order := range rows {
		if _, ok := seen[order.CreatedBy]; ok {
			continue
		}
		seen[order.CreatedBy] = struct{}{}
		creatorIDs = append(creatorIDs, order.CreatedBy)
	}
	rates, err := s.profiles.FindByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading creator profiles")
	}

	details := make([]OrderDetail, 0, len(rows))
	for _, order := range rows {
		rate := defaultCommissionRate
		if profile, ok := rates[order.CreatedBy]; ok {
			rate = profile.CommissionRate
		}
		details = append(details, OrderDetail{
			Order:      order,
			Financials: pricing.Compute(&order, order.Items, rate),
		})
	}
	return details, nil
}

func (s *service) Update(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDetail, error) {
	order, err := s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only edit your own orders")
	}

	updates := map[string]any{}

	if input.Status != nil {
		status, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
				WithDetails(map[string]string{"field": "status"})
		}
		if status != order.Status {
			updates["status"] = status
		}
	}

	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required").
				WithDetails(map[string]string{"field": "customer_name"})
		}
		updates["customer_name"] = name
	}
	if input.ProfileLink != nil {
		updates["profile_link"] = trimPtr(input.ProfileLink)
	}
	if input.PhoneNumber != nil {
		phone := trimPtr(input.PhoneNumber)
		if order.Channel == enums.ChannelWalkin && phone == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required for walk-in orders").
				WithDetails(map[string]string{"field": "phone_number"})
		}
		updates["phone_number"] = phone
	}
	if input.Notes != nil {
		updates["notes"] = trimPtr(input.Notes)
	}

	if input.DiscountAmount != nil || input.DiscountReason != nil {
		amount := order.DiscountAmount
		if input.DiscountAmount != nil {
			amount = *input.DiscountAmount
		}
		reason := order.DiscountReason
		if input.DiscountReason != nil {
			reason = trimPtr(input.DiscountReason)
		}

		// the governor runs against the current lines, which may have
		// been replaced since the discount was first set
		subtotal := pricing.ItemsSubtotal(order.Items)
		if err := pricing.ValidateDiscount(amount, reason, subtotal); err != nil {
			return nil, err
		}

		discountChanged := !amount.Equal(order.DiscountAmount) || !equalPtr(reason, order.DiscountReason)
		updates["discount_amount"] = amount
		updates["discount_reason"] = reason
		if discountChanged {
			now := time.Now()
			updates["discount_updated_by"] = actor.ID
			updates["discount_updated_at"] = now
		}
	}

	if len(updates) == 0 {
		return s.detail(ctx, order), nil
	}

	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order")
	}

	order, err = s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order), nil
}

func (s *service) ReplaceItems(ctx context.Context, actor Actor, orderID uuid.UUID, input ReplaceItemsInput) (*OrderDetail, error) {
	if !actor.Role.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can replace order items")
	}

	order, err := s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}

	newItems, newSubtotal, err := s.snapshotItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	// the existing discount must survive against the new subtotal; an
	// oversized discount fails the whole replacement
	if err := pricing.ValidateDiscount(order.DiscountAmount, order.DiscountReason, newSubtotal); err != nil {
		return nil, err
	}

	// net stock effect: return old quantities, deduct new quantities
	delta := map[string]int{}
	for _, item := range order.Items {
		delta[item.SKU] += item.Qty
	}
	for _, item := range newItems {
		delta[item.SKU] -= item.Qty
	}

	for i := range newItems {
		newItems[i].OrderID = order.ID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).ReplaceItems(ctx, order.ID, newItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replacing order items")
		}
		return s.stock.ApplyDelta(ctx, tx, order.ID, actor.ID, delta)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderCode(ctx, order.OrderCode), "order items replaced")
	}

	order, err = s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order), nil
}

// normalizeItems coerces quantities up to one and merges duplicate SKUs
// into a single line.
func normalizeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required").
			WithDetails(map[string]string{"field": "items"})
	}

	merged := make([]OrderItemInput, 0, len(items))
	index := map[string]int{}
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
				WithDetails(map[string]string{"field": "items"})
		}
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		if at, ok := index[sku]; ok {
			merged[at].Qty += qty
			continue
		}
		index[sku] = len(merged)
		merged = append(merged, OrderItemInput{SKU: sku, Qty: qty})
	}
	return merged, nil
}

// snapshotItems copies catalog values into immutable line snapshots and
// returns the resulting subtotal.
func (s *service) snapshotItems(ctx context.Context, lines []OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	skus := make([]string, 0, len(lines))
	for _, line := range lines {
		skus = append(skus, line.SKU)
	}
	products, err := s.catalog.LookupMany(ctx, skus)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product := products[line.SKU]
		items = append(items, models.OrderItem{
			SKU:             product.SKU,
			Qty:             line.Qty,
			CategoryAtTime:  product.Category,
			UnitCostAtTime:  product.UnitCost,
			SellPriceAtTime: product.SellPrice,
		})
		subtotal = subtotal.Add(product.SellPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return items, subtotal, nil
}

func (s *service) find(ctx context.Context, idOrCode string) (*models.Order, error) {
	idOrCode = strings.TrimSpace(idOrCode)
	if id, err := uuid.Parse(idOrCode); err == nil {
		return s.findByID(ctx, id)
	}
	order, err := s.repo.FindByCode(ctx, idOrCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(idOrCode)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}

func (s *service) findByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}

func (s *service) detail(ctx context.Context, order *models.Order) *OrderDetail {
	rate := defaultCommissionRate
	if profile, err := s.profiles.FindByID(ctx, order.CreatedBy); err == nil {
		rate = profile.CommissionRate
	}
	return &OrderDetail{
		Order:      *order,
		Financials: pricing.Compute(order, order.Items, rate),
	}
}

func notFound(key string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %q not found", key))
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
