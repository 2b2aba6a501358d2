package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
)

// Repository reads the expense and AR/AP tables. The order core only
// consumes these as summable balances for the dashboard; row lifecycle
// management happens in the back-office tooling.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ExpensesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ReceivablesOutstanding(ctx context.Context) (decimal.Decimal, error)
	PayablesOutstanding(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a finance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ExpensesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("expense_date >= ? AND expense_date <= ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ReceivablesOutstanding sums amount_due - amount_paid across open and
// partial rows.
func (r *repository) ReceivablesOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Receivable{}).
		Select("COALESCE(SUM(amount_due - amount_paid), 0)").
		Where("status IN ?", []string{"open", "partial"}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repository) PayablesOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payable{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status IN ?", []string{"open", "partial"}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
