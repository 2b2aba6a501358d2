package controllers

import (
	"net/http"
	"strings"

	"github.com/twoflytrading/wholesale-backend/api/middleware"
	"github.com/twoflytrading/wholesale-backend/api/responses"
	"github.com/twoflytrading/wholesale-backend/api/validators"
	"github.com/twoflytrading/wholesale-backend/internal/inventory"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

// InventoryLevels returns the derived on-hand count for every product.
func InventoryLevels(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levels, err := svc.Levels(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, levels)
	}
}

// InventoryMovements pages through the movement ledger, optionally filtered
// to a single SKU.
func InventoryMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		sku := strings.TrimSpace(r.URL.Query().Get("sku"))

		movements, err := svc.Movements(r.Context(), sku, pagination.Params{Limit: limit, Offset: offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movements)
	}
}

// InventoryAdjust records a manual stock correction. Owner only.
func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor"))
			return
		}

		var input inventory.AdjustInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.Adjust(r.Context(), actor.Role, actor.ID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}
