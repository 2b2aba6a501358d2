package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/internal/pricing"
	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
)

var defaultCommissionRate = decimal.NewFromFloat(0.30)

// DateRange bounds a report. Both ends are inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// CommissionLine is one online order in a staff member's commission report.
type CommissionLine struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderCode      string          `json:"order_code"`
	CreatedAt      time.Time       `json:"created_at"`
	Region         *enums.Region   `json:"region"`
	ShippingPaid   decimal.Decimal `json:"shipping_paid"`
	CourierCost    decimal.Decimal `json:"courier_cost"`
	ShippingProfit decimal.Decimal `json:"shipping_profit"`
	Commission     decimal.Decimal `json:"commission"`
}

// CommissionReport is the per-creator commission roll-up. The rate is the
// creator's profile rate as of report time; editing a rate changes how
// historical orders report.
type CommissionReport struct {
	Rate  decimal.Decimal  `json:"rate"`
	Lines []CommissionLine `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

// DashboardSummary is the owner's money overview for a date range.
type DashboardSummary struct {
	OrderProfit            decimal.Decimal `json:"order_profit"`
	ExpensesTotal          decimal.Decimal `json:"expenses_total"`
	NetAfterExpenses       decimal.Decimal `json:"net_after_expenses"`
	ItemsProfit            decimal.Decimal `json:"items_profit"`
	ShippingProfit         decimal.Decimal `json:"shipping_profit"`
	CommissionTotal        decimal.Decimal `json:"commission_total"`
	ReceivablesOutstanding decimal.Decimal `json:"receivables_outstanding"`
	PayablesOutstanding    decimal.Decimal `json:"payables_outstanding"`
}

// CategoryProfit is one row of the profit-by-category grouping. Order-level
// discounts are allocated to lines pro rata by revenue.
type CategoryProfit struct {
	Category string          `json:"category"`
	Qty      int             `json:"qty"`
	Revenue  decimal.Decimal `json:"revenue"`
	COGS     decimal.Decimal `json:"cogs"`
	Profit   decimal.Decimal `json:"profit"`
}

// ChannelProfit is one row of the profit-by-channel grouping.
type ChannelProfit struct {
	Channel        enums.Channel   `json:"channel"`
	Orders         int             `json:"orders"`
	ItemsProfit    decimal.Decimal `json:"items_profit"`
	ShippingProfit decimal.Decimal `json:"shipping_profit"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	Commission     decimal.Decimal `json:"commission"`
}

// ProfileReader resolves commission rates for aggregation.
type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error)
}

// LedgerReader supplies the auxiliary balances summed into the dashboard.
type LedgerReader interface {
	ExpensesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ReceivablesOutstanding(ctx context.Context) (decimal.Decimal, error)
	PayablesOutstanding(ctx context.Context) (decimal.Decimal, error)
}

// Service builds the read-only roll-ups: commission, dashboard, groupings.
type Service interface {
	CommissionReport(ctx context.Context, actorID uuid.UUID, rng DateRange) (*CommissionReport, error)
	DashboardSummary(ctx context.Context, actorRole enums.ActorRole, rng DateRange) (*DashboardSummary, error)
	ProfitByCategory(ctx context.Context, actorRole enums.ActorRole, rng DateRange) ([]CategoryProfit, error)
	ProfitByChannel(ctx context.Context, actorRole enums.ActorRole, rng DateRange) ([]ChannelProfit, error)
}

type service struct {
	repo     Repository
	profiles ProfileReader
	ledgers  LedgerReader
}

// NewService wires a reports service with the required dependencies.
func NewService(repo Repository, profiles ProfileReader, ledgers LedgerReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile reader required")
	}
	if ledgers == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	return &service{repo: repo, profiles: profiles, ledgers: ledgers}, nil
}

func (s *service) CommissionReport(ctx context.Context, actorID uuid.UUID, rng DateRange) (*CommissionReport, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	rate := defaultCommissionRate
	if profile, err := s.profiles.FindByID(ctx, actorID); err == nil {
		rate = profile.CommissionRate
	}

	rows, err := s.repo.ListOnlineOrdersByCreator(ctx, actorID, rng.From, rng.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading commission orders")
	}

	report := &CommissionReport{
		Rate:  rate,
		Lines: make([]CommissionLine, 0, len(rows)),
		Total: decimal.Zero,
	}
	for _, order := range rows {
		fin := pricing.Compute(&order, order.Items, rate)
		report.Lines = append(report.Lines, CommissionLine{
			OrderID:        order.ID,
			OrderCode:      order.OrderCode,
			CreatedAt:      order.CreatedAt,
			Region:         order.Region,
			ShippingPaid:   order.ShippingPaid,
			CourierCost:    order.CourierCost,
			ShippingProfit: fin.ShippingProfit,
			Commission:     fin.Commission,
		})
		report.Total = report.Total.Add(fin.Commission)
	}
	return report, nil
}

func (s *service) DashboardSummary(ctx context.Context, actorRole enums.ActorRole, rng DateRange) (*DashboardSummary, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dashboard is restricted to owners")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListOrdersInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}
	rates, err := s.creatorRates(ctx, rows)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		OrderProfit:     decimal.Zero,
		ItemsProfit:     decimal.Zero,
		ShippingProfit:  decimal.Zero,
		CommissionTotal: decimal.Zero,
	}
	for _, order := range rows {
		fin := pricing.Compute(&order, order.Items, rates[order.CreatedBy])
		// the company keeps gross profit minus the creator's commission
		summary.OrderProfit = summary.OrderProfit.Add(fin.GrossProfit.Sub(fin.Commission))
		summary.ItemsProfit = summary.ItemsProfit.Add(fin.ItemsProfit)
		summary.ShippingProfit = summary.ShippingProfit.Add(fin.ShippingProfit)
		summary.CommissionTotal = summary.CommissionTotal.Add(fin.Commission)
	}

	summary.ExpensesTotal, err = s.ledgers.ExpensesTotal(ctx, rng.From, rng.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing expenses")
	}
	summary.NetAfterExpenses = summary.OrderProfit.Sub(summary.ExpensesTotal)

	summary.ReceivablesOutstanding, err = s.ledgers.ReceivablesOutstanding(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing receivables")
	}
	summary.PayablesOutstanding, err = s.ledgers.PayablesOutstanding(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing payables")
	}
	return summary, nil
}

func (s *service) ProfitByCategory(ctx context.Context, actorRole enums.ActorRole, rng DateRange) ([]CategoryProfit, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profit groupings are restricted to owners")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListOrdersInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}

	byCategory := map[string]*CategoryProfit{}
	var categories []string
	for _, order := range rows {
		subtotal := pricing.ItemsSubtotal(order.Items)
		for _, item := range order.Items {
			qty := decimal.NewFromInt(int64(item.Qty))
			revenue := item.SellPriceAtTime.Mul(qty)
			// order discount allocated pro rata by line revenue
			if order.DiscountAmount.IsPositive() && subtotal.IsPositive() {
				revenue = revenue.Sub(order.DiscountAmount.Mul(revenue).Div(subtotal))
			}
			cogs := item.UnitCostAtTime.Mul(qty)

			row, ok := byCategory[item.CategoryAtTime]
			if !ok {
				row = &CategoryProfit{
					Category: item.CategoryAtTime,
					Revenue:  decimal.Zero,
					COGS:     decimal.Zero,
					Profit:   decimal.Zero,
				}
				byCategory[item.CategoryAtTime] = row
				categories = append(categories, item.CategoryAtTime)
			}
			row.Qty += item.Qty
			row.Revenue = row.Revenue.Add(revenue)
			row.COGS = row.COGS.Add(cogs)
			row.Profit = row.Profit.Add(revenue.Sub(cogs))
		}
	}

	sort.Strings(categories)
	result := make([]CategoryProfit, 0, len(categories))
	for _, category := range categories {
		result = append(result, *byCategory[category])
	}
	return result, nil
}

func (s *service) ProfitByChannel(ctx context.Context, actorRole enums.ActorRole, rng DateRange) ([]ChannelProfit, error) {
	if !actorRole.IsOwner() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profit groupings are restricted to owners")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListOrdersInRange(ctx, rng.From, rng.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}
	rates, err := s.creatorRates(ctx, rows)
	if err != nil {
		return nil, err
	}

	byChannel := map[enums.Channel]*ChannelProfit{}
	for _, order := range rows {
		fin := pricing.Compute(&order, order.Items, rates[order.CreatedBy])
		row, ok := byChannel[order.Channel]
		if !ok {
			row = &ChannelProfit{
				Channel:        order.Channel,
				ItemsProfit:    decimal.Zero,
				ShippingProfit: decimal.Zero,
				GrossProfit:    decimal.Zero,
				Commission:     decimal.Zero,
			}
			byChannel[order.Channel] = row
		}
		row.Orders++
		row.ItemsProfit = row.ItemsProfit.Add(fin.ItemsProfit)
		row.ShippingProfit = row.ShippingProfit.Add(fin.ShippingProfit)
		row.GrossProfit = row.GrossProfit.Add(fin.GrossProfit)
		row.Commission = row.Commission.Add(fin.Commission)
	}

	result := make([]ChannelProfit, 0, len(byChannel))
	for _, channel := range []enums.Channel{enums.ChannelOnline, enums.ChannelLalamove, enums.ChannelWalkin, enums.ChannelTiktok} {
		if row, ok := byChannel[channel]; ok {
			result = append(result, *row)
		}
	}
	return result, nil
}

// creatorRates batch-resolves the current commission rate per creator,
// falling back to the default where no profile exists.
func (s *service) creatorRates(ctx context.Context, rows []models.Order) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for _, order := range rows {
		if _, ok := seen[order.CreatedBy]; ok {
			continue
		}
		seen[order.CreatedBy] = struct{}{}
		ids = append(ids, order.CreatedBy)
	}

	profilesByID, err := s.profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading creator profiles")
	}

	rates := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		if profile, ok := profilesByID[id]; ok {
			rates[id] = profile.CommissionRate
			continue
		}
		rates[id] = defaultCommissionRate
	}
	return rates, nil
}

func validateRange(rng DateRange) error {
	if rng.From.IsZero() || rng.To.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range is required").
			WithDetails(map[string]string{"field": "range"})
	}
	if rng.To.Before(rng.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "range end cannot precede range start").
			WithDetails(map[string]string{"field": "range"})
	}
	return nil
}
