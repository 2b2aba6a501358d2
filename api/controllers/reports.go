package controllers

import (
	"net/http"
	"time"

	"github.com/twoflytrading/wholesale-backend/api/middleware"
	"github.com/twoflytrading/wholesale-backend/api/responses"
	"github.com/twoflytrading/wholesale-backend/api/validators"
	"github.com/twoflytrading/wholesale-backend/internal/reports"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
)

// defaultReportDays bounds a report when the caller omits the range.
const defaultReportDays = 30

// CommissionReport returns the caller's own online commission breakdown.
func CommissionReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		rng, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.CommissionReport(r.Context(), actor.ID, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// Dashboard returns the owner money overview.
func Dashboard(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		rng, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.DashboardSummary(r.Context(), actor.Role, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ProfitByCategory groups profit per product category.
func ProfitByCategory(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		rng, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ProfitByCategory(r.Context(), actor.Role, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ProfitByChannel groups profit per sales channel.
func ProfitByChannel(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		rng, err := parseReportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ProfitByChannel(r.Context(), actor.Role, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func parseReportRange(r *http.Request) (reports.DateRange, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return reports.DateRange{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return reports.DateRange{}, err
	}

	now := time.Now().UTC()
	if to.IsZero() {
		to = now
	} else {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if from.IsZero() {
		from = to.Add(-defaultReportDays * 24 * time.Hour)
	}

	return reports.DateRange{From: from, To: to}, nil
}
