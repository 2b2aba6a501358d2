package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/twoflytrading/wholesale-backend/api/middleware"
	"github.com/twoflytrading/wholesale-backend/api/responses"
	"github.com/twoflytrading/wholesale-backend/api/validators"
	internalorders "github.com/twoflytrading/wholesale-backend/internal/orders"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/metrics"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

// OrderCreate handles order intake across all four sales channels.
func OrderCreate(svc internalorders.Service, m *metrics.OrderMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		detail, err := svc.Create(r.Context(), actor, input)
		m.ObserveDuration("create", time.Since(start))
		if err != nil {
			m.IncFailure("create")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncSuccess("create", string(detail.Order.Channel))
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// OrderList returns an order page scoped to the caller's role.
func OrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, pagination.Params{Limit: limit, Offset: offset}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail resolves an order by UUID or by its ORD code.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		idOrCode := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if idOrCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		detail, err := svc.Get(r.Context(), actor, idOrCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// OrderUpdate applies partial edits, including status moves and discount
// changes, to an existing order.
func OrderUpdate(svc internalorders.Service, m *metrics.OrderMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalorders.UpdateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		detail, err := svc.Update(r.Context(), actor, orderID, input)
		m.ObserveDuration("update", time.Since(start))
		if err != nil {
			m.IncFailure("update")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncSuccess("update", string(detail.Order.Channel))
		responses.WriteSuccess(w, detail)
	}
}

// OrderReplaceItems swaps the full line set and reconciles stock by net delta.
func OrderReplaceItems(svc internalorders.Service, m *metrics.OrderMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalorders.ReplaceItemsInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start := time.Now()
		detail, err := svc.ReplaceItems(r.Context(), actor, orderID, input)
		m.ObserveDuration("replace_items", time.Since(start))
		if err != nil {
			m.IncFailure("replace_items")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncSuccess("replace_items", string(detail.Order.Channel))
		responses.WriteSuccess(w, detail)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func buildOrderFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("channel")); raw != "" {
		channel, err := enums.ParseChannel(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel filter")
		}
		filters.Channel = &channel
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("created_by")); raw != "" {
		createdBy, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid created_by filter")
		}
		filters.CreatedBy = &createdBy
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return filters, err
	}
	if !from.IsZero() {
		filters.DateFrom = &from
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return filters, err
	}
	if !to.IsZero() {
		end := to.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &end
	}

	return filters, nil
}
