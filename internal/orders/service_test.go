package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/internal/pricing"
	"github.com/twoflytrading/wholesale-backend/pkg/config"
	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

type fakeRepository struct {
	nextCode   int64
	created    []*models.Order
	updates    map[string]any
	replaced   []models.OrderItem
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn     func(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) NextOrderCode(ctx context.Context) (string, error) {
	f.nextCode++
	return FormatOrderCode(f.nextCode), nil
}

func (f *fakeRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	for _, order := range f.created {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByCode(ctx context.Context, code string) (*models.Order, error) {
	for _, order := range f.created {
		if order.OrderCode == code {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params, filters)
	}
	return nil, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.updates = updates
	for _, order := range f.created {
		if order.ID != id {
			continue
		}
		if status, ok := updates["status"].(enums.OrderStatus); ok {
			order.Status = status
		}
		if amount, ok := updates["discount_amount"].(decimal.Decimal); ok {
			order.DiscountAmount = amount
		}
		if reason, ok := updates["discount_reason"].(*string); ok {
			order.DiscountReason = reason
		}
	}
	return nil
}

func (f *fakeRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	f.replaced = items
	for _, order := range f.created {
		if order.ID == orderID {
			order.Items = items
		}
	}
	return nil
}

type fakeCatalog struct {
	products map[string]models.Product
}

func (f *fakeCatalog) LookupMany(ctx context.Context, skus []string) (map[string]models.Product, error) {
	result := map[string]models.Product{}
	var unknown []string
	for _, sku := range skus {
		product, ok := f.products[sku]
		if !ok {
			unknown = append(unknown, sku)
			continue
		}
		result[sku] = product
	}
	if len(unknown) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sku(s) on order").
			WithDetails(map[string]any{"field": "items", "unknown_skus": unknown})
	}
	return result, nil
}

type fakeStock struct {
	deducted []models.OrderItem
	delta    map[string]int
	deductFn func(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error
}

func (f *fakeStock) Deduct(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error {
	if f.deductFn != nil {
		return f.deductFn(ctx, tx, orderID, actorID, items)
	}
	f.deducted = append(f.deducted, items...)
	return nil
}

func (f *fakeStock) ApplyDelta(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, delta map[string]int) error {
	f.delta = delta
	return nil
}

type fakeProfiles struct {
	rates map[uuid.UUID]decimal.Decimal
}

func (f *fakeProfiles) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if rate, ok := f.rates[id]; ok {
		return &models.Profile{ID: id, CommissionRate: rate}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfiles) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	result := map[uuid.UUID]models.Profile{}
	for _, id := range ids {
		if rate, ok := f.rates[id]; ok {
			result[id] = models.Profile{ID: id, CommissionRate: rate}
		}
	}
	return result, nil
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type testHarness struct {
	repo     *fakeRepository
	catalog  *fakeCatalog
	stock    *fakeStock
	profiles *fakeProfiles
	svc      Service
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func strPtr(s string) *string { return &s }

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	repo := &fakeRepository{}
	catalog := &fakeCatalog{products: map[string]models.Product{
		"VAPE-001":  {SKU: "VAPE-001", Category: "vape", UnitCost: dec("60"), SellPrice: dec("100"), Active: true},
		"JUICE-002": {SKU: "JUICE-002", Category: "juice", UnitCost: dec("20"), SellPrice: dec("45"), Active: true},
	}}
	stock := &fakeStock{}
	profilesRepo := &fakeProfiles{rates: map[uuid.UUID]decimal.Decimal{}}

	rates, err := pricing.NewStaticRateTable(config.CourierConfig{Rates: map[string]string{
		"luzon": "120", "visayas": "150", "mindanao": "180",
	}})
	if err != nil {
		t.Fatalf("rate table: %v", err)
	}

	svc, err := NewService(repo, catalog, stock, profilesRepo, rates, &fakeTxRunner{}, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &testHarness{repo: repo, catalog: catalog, stock: stock, profiles: profilesRepo, svc: svc}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected *Error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func onlineInput() CreateOrderInput {
	region := "luzon"
	return CreateOrderInput{
		Channel:      "online",
		CustomerName: "Maria Santos",
		Region:       &region,
		ShippingPaid: dec("200"),
		Items:        []OrderItemInput{{SKU: "VAPE-001", Qty: 1}},
	}
}

func TestCreateOnlineOrderComputesShippingAndCommission(t *testing.T) {
	h := newHarness(t)
	actor := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	h.profiles.rates[actor.ID] = dec("0.30")

	detail, err := h.svc.Create(context.Background(), actor, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if detail.Order.OrderCode != "ORD-000001" {
		t.Errorf("order code = %q", detail.Order.OrderCode)
	}
	if detail.Order.Status != enums.OrderStatusPending {
		t.Errorf("status = %s, want pending", detail.Order.Status)
	}
	if !detail.Order.CourierCost.Equal(dec("120")) {
		t.Errorf("courier cost = %s, want 120", detail.Order.CourierCost)
	}
	if !detail.Financials.ShippingProfit.Equal(dec("80")) {
		t.Errorf("shipping profit = %s, want 80", detail.Financials.ShippingProfit)
	}
	if !detail.Financials.Commission.Equal(dec("24")) {
		t.Errorf("commission = %s, want 24", detail.Financials.Commission)
	}
	if len(h.stock.deducted) != 1 || h.stock.deducted[0].Qty != 1 {
		t.Errorf("stock deduction = %+v", h.stock.deducted)
	}
}

func TestCreateSnapshotsCatalogValues(t *testing.T) {
	h := newHarness(t)
	actor := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	detail, err := h.svc.Create(context.Background(), actor, CreateOrderInput{
		Channel:      "tiktok",
		CustomerName: "Jo Reyes",
		Items:        []OrderItemInput{{SKU: "VAPE-001", Qty: 2}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	item := detail.Order.Items[0]
	if item.CategoryAtTime != "vape" {
		t.Errorf("category snapshot = %q", item.CategoryAtTime)
	}
	if !item.UnitCostAtTime.Equal(dec("60")) || !item.SellPriceAtTime.Equal(dec("100")) {
		t.Errorf("price snapshot = %s/%s", item.UnitCostAtTime, item.SellPriceAtTime)
	}
	if !detail.Financials.ItemsSubtotal.Equal(dec("200")) {
		t.Errorf("subtotal = %s, want 200", detail.Financials.ItemsSubtotal)
	}
}

func TestCreateWalkinRequiresPhone(t *testing.T) {
	h := newHarness(t)
	actor := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	_, err := h.svc.Create(context.Background(), actor, CreateOrderInput{
		Channel:      "walkin",
		CustomerName: "Maria Santos",
		Items:        []OrderItemInput{{SKU: "VAPE-001", Qty: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(h.repo.created) != 0 {
		t.Fatalf("no order should be persisted")
	}
	if len(h.stock.deducted) != 0 {
		t.Fatalf("no stock should be deducted")
	}
}

func TestCreateRequiresCustomerName(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, CreateOrderInput{
		Channel: "walkin",
		Items:   []OrderItemInput{{SKU: "VAPE-001", Qty: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateDiscountWithoutReasonRejected(t *testing.T) {
	h := newHarness(t)
	input := CreateOrderInput{
		Channel:        "tiktok",
		CustomerName:   "Jo Reyes",
		DiscountAmount: dec("100"),
		Items:          []OrderItemInput{{SKU: "VAPE-001", Qty: 2}},
	}

	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(h.repo.created) != 0 {
		t.Fatalf("no order should be persisted")
	}
}

func TestCreateDiscountExceedingSubtotalRejected(t *testing.T) {
	h := newHarness(t)
	input := CreateOrderInput{
		Channel:        "tiktok",
		CustomerName:   "Jo Reyes",
		DiscountAmount: dec("250"),
		DiscountReason: strPtr("bulk deal"),
		Items:          []OrderItemInput{{SKU: "VAPE-001", Qty: 2}},
	}

	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateUnknownSKURejected(t *testing.T) {
	h := newHarness(t)
	input := CreateOrderInput{
		Channel:      "tiktok",
		CustomerName: "Jo Reyes",
		Items:        []OrderItemInput{{SKU: "GHOST-999", Qty: 1}},
	}

	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(h.stock.deducted) != 0 {
		t.Fatalf("no stock should be deducted")
	}
}

func TestCreateCoercesAndMergesQuantities(t *testing.T) {
	h := newHarness(t)
	input := CreateOrderInput{
		Channel:      "tiktok",
		CustomerName: "Jo Reyes",
		Items: []OrderItemInput{
			{SKU: "VAPE-001", Qty: 0},
			{SKU: "VAPE-001", Qty: 2},
			{SKU: "JUICE-002", Qty: -5},
		},
	}

	detail, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(detail.Order.Items) != 2 {
		t.Fatalf("expected merged lines, got %d", len(detail.Order.Items))
	}
	if detail.Order.Items[0].SKU != "VAPE-001" || detail.Order.Items[0].Qty != 3 {
		t.Errorf("merged line = %+v", detail.Order.Items[0])
	}
	if detail.Order.Items[1].SKU != "JUICE-002" || detail.Order.Items[1].Qty != 1 {
		t.Errorf("coerced line = %+v", detail.Order.Items[1])
	}
}

func TestCreateNonOnlineChannelForcesRegionAndShippingEmpty(t *testing.T) {
	h := newHarness(t)
	region := "luzon"
	input := CreateOrderInput{
		Channel:      "lalamove",
		CustomerName: "Jo Reyes",
		Region:       &region,
		ShippingPaid: dec("500"),
		Items:        []OrderItemInput{{SKU: "VAPE-001", Qty: 1}},
	}

	detail, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if detail.Order.Region != nil {
		t.Errorf("region should be cleared for non-online orders")
	}
	if !detail.Order.ShippingPaid.IsZero() || !detail.Order.CourierCost.IsZero() {
		t.Errorf("shipping fields should be zero, got %s/%s", detail.Order.ShippingPaid, detail.Order.CourierCost)
	}
}

func TestCreateOnlineRequiresRegion(t *testing.T) {
	h := newHarness(t)
	input := onlineInput()
	input.Region = nil

	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, input)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// staff member B cannot touch A's order
	otherStaff := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	status := "paid"
	_, err = h.svc.Update(context.Background(), otherStaff, detail.Order.ID, UpdateOrderInput{Status: &status})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// the owner can
	owner := Actor{ID: uuid.New(), Role: enums.ActorRoleOwner}
	updated, err := h.svc.Update(context.Background(), owner, detail.Order.ID, UpdateOrderInput{Status: &status})
	if err != nil {
		t.Fatalf("owner update error: %v", err)
	}
	if updated.Order.Status != enums.OrderStatusPaid {
		t.Errorf("status = %s, want paid", updated.Order.Status)
	}

	// and so can the creator
	status = "packed"
	if _, err := h.svc.Update(context.Background(), creator, detail.Order.ID, UpdateOrderInput{Status: &status}); err != nil {
		t.Fatalf("creator update error: %v", err)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	status := "returned"
	_, err = h.svc.Update(context.Background(), creator, detail.Order.ID, UpdateOrderInput{Status: &status})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateDiscountRevalidatesAgainstCurrentSubtotal(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// subtotal is 100; a 150 discount must be rejected, not clamped
	amount := dec("150")
	_, err = h.svc.Update(context.Background(), creator, detail.Order.ID, UpdateOrderInput{
		DiscountAmount: &amount,
		DiscountReason: strPtr("loyal customer"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	amount = dec("50")
	updated, err := h.svc.Update(context.Background(), creator, detail.Order.ID, UpdateOrderInput{
		DiscountAmount: &amount,
		DiscountReason: strPtr("loyal customer"),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !updated.Order.DiscountAmount.Equal(dec("50")) {
		t.Errorf("discount = %s", updated.Order.DiscountAmount)
	}
	if _, ok := h.repo.updates["discount_updated_by"]; !ok {
		t.Errorf("discount audit fields should be written")
	}
}

func TestUpdateDiscountWithoutReasonRejectedOnEdit(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	amount := dec("20")
	_, err = h.svc.Update(context.Background(), creator, detail.Order.ID, UpdateOrderInput{DiscountAmount: &amount})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestReplaceItemsOwnerOnly(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err = h.svc.ReplaceItems(context.Background(), creator, detail.Order.ID, ReplaceItemsInput{
		Items: []OrderItemInput{{SKU: "JUICE-002", Qty: 1}},
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestReplaceItemsAppliesNetStockDelta(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	detail, err := h.svc.Create(context.Background(), creator, CreateOrderInput{
		Channel:      "tiktok",
		CustomerName: "Jo Reyes",
		Items: []OrderItemInput{
			{SKU: "VAPE-001", Qty: 3},
			{SKU: "JUICE-002", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	owner := Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}
	updated, err := h.svc.ReplaceItems(context.Background(), owner, detail.Order.ID, ReplaceItemsInput{
		Items: []OrderItemInput{{SKU: "VAPE-001", Qty: 5}},
	})
	if err != nil {
		t.Fatalf("ReplaceItems error: %v", err)
	}

	// VAPE-001 3 -> 5 deducts 2 more; JUICE-002 2 -> 0 returns 2
	if h.stock.delta["VAPE-001"] != -2 {
		t.Errorf("VAPE-001 delta = %d, want -2", h.stock.delta["VAPE-001"])
	}
	if h.stock.delta["JUICE-002"] != 2 {
		t.Errorf("JUICE-002 delta = %d, want 2", h.stock.delta["JUICE-002"])
	}
	if len(updated.Order.Items) != 1 || updated.Order.Items[0].Qty != 5 {
		t.Errorf("replaced items = %+v", updated.Order.Items)
	}
}

func TestReplaceItemsFailsIfExistingDiscountExceedsNewSubtotal(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	detail, err := h.svc.Create(context.Background(), creator, CreateOrderInput{
		Channel:        "tiktok",
		CustomerName:   "Jo Reyes",
		DiscountAmount: dec("150"),
		DiscountReason: strPtr("bulk deal"),
		Items:          []OrderItemInput{{SKU: "VAPE-001", Qty: 2}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	owner := Actor{ID: uuid.New(), Role: enums.ActorRoleOwner}
	_, err = h.svc.ReplaceItems(context.Background(), owner, detail.Order.ID, ReplaceItemsInput{
		Items: []OrderItemInput{{SKU: "JUICE-002", Qty: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if h.stock.delta != nil {
		t.Fatalf("no stock delta should be applied")
	}
}

func TestGetStaffSeesUniformNotFoundOnOthersOrders(t *testing.T) {
	h := newHarness(t)
	creator := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	detail, err := h.svc.Create(context.Background(), creator, onlineInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	other := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}
	_, err = h.svc.Get(context.Background(), other, detail.Order.ID.String())
	assertCode(t, err, pkgerrors.CodeNotFound)

	owner := Actor{ID: uuid.New(), Role: enums.ActorRoleOwner}
	got, err := h.svc.Get(context.Background(), owner, detail.Order.OrderCode)
	if err != nil {
		t.Fatalf("owner lookup by code error: %v", err)
	}
	if got.Order.ID != detail.Order.ID {
		t.Errorf("lookup by code returned the wrong order")
	}
}

func TestListScopesStaffToOwnOrders(t *testing.T) {
	h := newHarness(t)
	staff := Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}

	var captured ListFilters
	h.repo.listFn = func(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
		captured = filters
		return nil, nil
	}

	if _, err := h.svc.List(context.Background(), staff, pagination.Params{}, ListFilters{}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if captured.CreatedBy == nil || *captured.CreatedBy != staff.ID {
		t.Errorf("staff list should be scoped to the caller")
	}

	owner := Actor{ID: uuid.New(), Role: enums.ActorRoleOwner}
	if _, err := h.svc.List(context.Background(), owner, pagination.Params{}, ListFilters{}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if captured.CreatedBy != nil {
		t.Errorf("owner list should not be scoped")
	}
}

func TestCreateRollsBackWhenDeductionFails(t *testing.T) {
	h := newHarness(t)
	h.stock.deductFn = func(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error {
		return pkgerrors.New(pkgerrors.CodeDependency, "ledger unavailable")
	}

	_, err := h.svc.Create(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleStaff}, onlineInput())
	assertCode(t, err, pkgerrors.CodeDependency)
}
