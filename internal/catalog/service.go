package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
)

// Service exposes catalog reads and owner-gated catalog writes.
type Service interface {
	Lookup(ctx context.Context, sku string) (*models.Product, error)
	LookupMany(ctx context.Context, skus []string) (map[string]models.Product, error)
	List(ctx context.Context, includeInactive bool) ([]models.Product, error)
	CreateProduct(ctx context.Context, actorRole enums.ActorRole, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actorRole enums.ActorRole, sku string, input UpdateProductInput) (*models.Product, error)
}

type service struct {
	repo  Repository
	cache *productCache
}

// CreateProductInput captures the fields required to register a SKU.
type CreateProductInput struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// UpdateProductInput carries partial catalog updates. Nil fields are left
// untouched. SKUs are immutable; deactivation replaces deletion.
type UpdateProductInput struct {
	Name      *string          `json:"name"`
	Category  *string          `json:"category"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	SellPrice *decimal.Decimal `json:"sell_price"`
	Active    *bool            `json:"active"`
}

// NewService wires a catalog service. The cache store may be nil; the
// service then reads straight from the database.
func NewService(repo Repository, cacheStore CacheStore, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		repo:  repo,
		cache: newProductCache(cacheStore, cacheTTL, logg),
	}, nil
}

func (s *service) Lookup(ctx context.Context, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
			WithDetails(map[string]string{"field": "sku"})
	}
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

// LookupMany resolves the given SKUs and fails if any are missing or
// inactive. Order intake uses this to snapshot catalog values.
func (s *service) LookupMany(ctx context.Context, skus []string) (map[string]models.Product, error) {
	if len(skus) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one sku is required").
			WithDetails(map[string]string{"field": "items"})
	}

	unique := make([]string, 0, len(skus))
	seen := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
				WithDetails(map[string]string{"field": "items"})
		}
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		unique = append(unique, sku)
	}

	products, err := s.repo.FindBySKUs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}

	bySKU := make(map[string]models.Product, len(products))
	for _, product := range products {
		bySKU[product.SKU] = product
	}

	var missing, inactive []string
	for _, sku := range unique {
		product, ok := bySKU[sku]
		switch {
		case !ok:
			missing = append(missing, sku)
		case !product.Active:
			inactive = append(inactive, sku)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sku(s) on order").
			WithDetails(map[string]any{"field": "items", "unknown_skus": missing})
	}
	if len(inactive) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inactive sku(s) on order").
			WithDetails(map[string]any{"field": "items", "inactive_skus": inactive})
	}
	return bySKU, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	if includeInactive {
		products, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
		}
		return products, nil
	}

	if products, ok := s.cache.getActive(ctx); ok {
		return products, nil
	}
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	s.cache.setActive(ctx, products)
	return products, nil
}

func (s *service) CreateProduct(ctx context.Context, actorRole enums.ActorRole, input CreateProductInput) (*models.Product, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can modify the catalog")
	}
	if err := validateCreateProduct(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBySKU(ctx, input.SKU); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q already exists", input.SKU))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking product")
	}

	product := &models.Product{
		SKU:       strings.TrimSpace(input.SKU),
		Name:      strings.TrimSpace(input.Name),
		Category:  strings.TrimSpace(input.Category),
		UnitCost:  input.UnitCost,
		SellPrice: input.SellPrice,
		Active:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	s.cache.invalidate(ctx)
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, actorRole enums.ActorRole, sku string, input UpdateProductInput) (*models.Product, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can modify the catalog")
	}

	product, err := s.Lookup(ctx, sku)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank").
				WithDetails(map[string]string{"field": "name"})
		}
		updates["name"] = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be blank").
				WithDetails(map[string]string{"field": "category"})
		}
		updates["category"] = category
	}
	if input.UnitCost != nil {
		if input.UnitCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative").
				WithDetails(map[string]string{"field": "unit_cost"})
		}
		updates["unit_cost"] = *input.UnitCost
	}
	if input.SellPrice != nil {
		if input.SellPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell price cannot be negative").
				WithDetails(map[string]string{"field": "sell_price"})
		}
		updates["sell_price"] = *input.SellPrice
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, product.SKU, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	s.cache.invalidate(ctx)
	return s.Lookup(ctx, product.SKU)
}

func validateCreateProduct(input CreateProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required").
			WithDetails(map[string]string{"field": "sku"})
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"field": "name"})
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required").
			WithDetails(map[string]string{"field": "category"})
	}
	if input.UnitCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative").
			WithDetails(map[string]string{"field": "unit_cost"})
	}
	if input.SellPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "sell price cannot be negative").
			WithDetails(map[string]string{"field": "sell_price"})
	}
	return nil
}
