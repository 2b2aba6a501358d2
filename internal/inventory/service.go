package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

// ProductLookup resolves a SKU against the catalog before a manual movement
// is written.
type ProductLookup interface {
	Lookup(ctx context.Context, sku string) (*models.Product, error)
}

// Service writes and reads the stock movement ledger. Order intake and item
// replacement call Deduct/Reverse inside the order transaction; manual
// adjustments are owner-gated and write their own movement.
type Service interface {
	Deduct(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error
	Reverse(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error
	ApplyDelta(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, delta map[string]int) error
	Adjust(ctx context.Context, actorRole enums.ActorRole, actorID uuid.UUID, input AdjustInput) (*models.StockMovement, error)
	OnHand(ctx context.Context, sku string) (int, error)
	Levels(ctx context.Context) ([]Level, error)
	Movements(ctx context.Context, sku string, params pagination.Params) ([]models.StockMovement, error)
}

type service struct {
	repo     Repository
	products ProductLookup
}

// AdjustInput captures a manual stock correction.
type AdjustInput struct {
	SKU       string `json:"sku"`
	QtyChange int    `json:"qty_change"`
	Note      string `json:"note"`
}

// NewService wires an inventory service with the required dependencies.
func NewService(repo Repository, products ProductLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, products: products}, nil
}

// Deduct writes one negative movement per order line. Negative on-hand is
// tolerated; a backorder is a stock problem, not an order problem.
func (s *service) Deduct(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error {
	movements := make([]models.StockMovement, 0, len(items))
	for _, item := range items {
		movements = append(movements, models.StockMovement{
			SKU:        item.SKU,
			QtyChange:  -item.Qty,
			Reason:     enums.MovementReasonOrderFulfillment,
			RefOrderID: &orderID,
			CreatedBy:  actorID,
		})
	}
	if err := s.repo.WithTx(tx).CreateMovements(ctx, movements); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock deduction")
	}
	return nil
}

// Reverse returns the full quantity of each line to stock.
func (s *service) Reverse(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, items []models.OrderItem) error {
	movements := make([]models.StockMovement, 0, len(items))
	for _, item := range items {
		movements = append(movements, models.StockMovement{
			SKU:        item.SKU,
			QtyChange:  item.Qty,
			Reason:     enums.MovementReasonOrderReversal,
			RefOrderID: &orderID,
			CreatedBy:  actorID,
		})
	}
	if err := s.repo.WithTx(tx).CreateMovements(ctx, movements); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock reversal")
	}
	return nil
}

// ApplyDelta writes the net per-SKU movement produced by an item
// replacement. Positive values return stock, negative values deduct it;
// zero deltas write nothing.
func (s *service) ApplyDelta(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID, delta map[string]int) error {
	skus := make([]string, 0, len(delta))
	for sku := range delta {
		skus = append(skus, sku)
	}
	// deterministic write order keeps ledger reads stable
	sort.Strings(skus)

	movements := make([]models.StockMovement, 0, len(delta))
	for _, sku := range skus {
		change := delta[sku]
		if change == 0 {
			continue
		}
		reason := enums.MovementReasonOrderFulfillment
		if change > 0 {
			reason = enums.MovementReasonOrderReversal
		}
		movements = append(movements, models.StockMovement{
			SKU:        sku,
			QtyChange:  change,
			Reason:     reason,
			RefOrderID: &orderID,
			CreatedBy:  actorID,
		})
	}
	if err := s.repo.WithTx(tx).CreateMovements(ctx, movements); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock delta")
	}
	return nil
}

func (s *service) Adjust(ctx context.Context, actorRole enums.ActorRole, actorID uuid.UUID, input AdjustInput) (*models.StockMovement, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can adjust stock")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
			WithDetails(map[string]string{"field": "sku"})
	}
	if input.QtyChange == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty_change cannot be zero").
			WithDetails(map[string]string{"field": "qty_change"})
	}

	if _, err := s.products.Lookup(ctx, sku); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		SKU:       sku,
		QtyChange: input.QtyChange,
		Reason:    enums.MovementReasonManualAdjust,
		CreatedBy: actorID,
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		movement.Note = &note
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock adjustment")
	}
	return movement, nil
}

func (s *service) OnHand(ctx context.Context, sku string) (int, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
			WithDetails(map[string]string{"field": "sku"})
	}
	onHand, err := s.repo.OnHand(ctx, sku)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing stock movements")
	}
	return onHand, nil
}

func (s *service) Levels(ctx context.Context) ([]Level, error) {
	levels, err := s.repo.Levels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock levels")
	}
	return levels, nil
}

func (s *service) Movements(ctx context.Context, sku string, params pagination.Params) ([]models.StockMovement, error) {
	movements, err := s.repo.ListMovements(ctx, strings.TrimSpace(sku), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock movements")
	}
	return movements, nil
}
