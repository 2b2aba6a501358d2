package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/api/middleware"
	internalorders "github.com/twoflytrading/wholesale-backend/internal/orders"
	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
	"github.com/twoflytrading/wholesale-backend/pkg/metrics"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
	"github.com/twoflytrading/wholesale-backend/pkg/types"
)

type stubOrdersService struct {
	createFn  func(ctx context.Context, actor internalorders.Actor, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error)
	getFn     func(ctx context.Context, actor internalorders.Actor, idOrCode string) (*internalorders.OrderDetail, error)
	listFn    func(ctx context.Context, actor internalorders.Actor, params pagination.Params, filters internalorders.ListFilters) ([]internalorders.OrderDetail, error)
	updateFn  func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, input internalorders.UpdateOrderInput) (*internalorders.OrderDetail, error)
	replaceFn func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, input internalorders.ReplaceItemsInput) (*internalorders.OrderDetail, error)
}

func (s *stubOrdersService) Create(ctx context.Context, actor internalorders.Actor, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
	return s.createFn(ctx, actor, input)
}

func (s *stubOrdersService) Get(ctx context.Context, actor internalorders.Actor, idOrCode string) (*internalorders.OrderDetail, error) {
	return s.getFn(ctx, actor, idOrCode)
}

func (s *stubOrdersService) List(ctx context.Context, actor internalorders.Actor, params pagination.Params, filters internalorders.ListFilters) ([]internalorders.OrderDetail, error) {
	return s.listFn(ctx, actor, params, filters)
}

func (s *stubOrdersService) Update(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, input internalorders.UpdateOrderInput) (*internalorders.OrderDetail, error) {
	return s.updateFn(ctx, actor, orderID, input)
}

func (s *stubOrdersService) ReplaceItems(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, input internalorders.ReplaceItemsInput) (*internalorders.OrderDetail, error) {
	return s.replaceFn(ctx, actor, orderID, input)
}

func authedRequest(method, target, body string, role enums.ActorRole) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithActor(req.Context(), uuid.New(), role))
}

func TestOrderCreateReturns201(t *testing.T) {
	svc := &stubOrdersService{
		createFn: func(ctx context.Context, actor internalorders.Actor, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
			if input.Channel != "walkin" {
				t.Fatalf("expected walkin channel, got %q", input.Channel)
			}
			return &internalorders.OrderDetail{
				Order: models.Order{
					ID:           uuid.New(),
					OrderCode:    "ORD-000001",
					Channel:      enums.ChannelWalkin,
					Status:       enums.OrderStatusPending,
					CustomerName: input.CustomerName,
				},
			}, nil
		},
	}

	body := `{"channel":"walkin","customer_name":"Maria Santos","phone_number":"09171234567","shipping_paid":"0","discount_amount":"0","items":[{"sku":"VAPE-001","qty":2}]}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, enums.ActorRoleStaff)
	resp := httptest.NewRecorder()

	OrderCreate(svc, metrics.NewOrderMetrics(nil), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestOrderCreateRequiresActor(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	OrderCreate(svc, metrics.NewOrderMetrics(nil), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderCreateSurfacesValidationErrors(t *testing.T) {
	svc := &stubOrdersService{
		createFn: func(ctx context.Context, actor internalorders.Actor, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount requires a reason").
				WithDetails(map[string]string{"field": "discount_reason"})
		},
	}

	body := `{"channel":"walkin","customer_name":"Maria Santos","shipping_paid":"0","discount_amount":"50","items":[{"sku":"VAPE-001","qty":2}]}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, enums.ActorRoleStaff)
	resp := httptest.NewRecorder()

	OrderCreate(svc, metrics.NewOrderMetrics(nil), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Error.Message != "discount requires a reason" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestOrderDetailPassesCodeThrough(t *testing.T) {
	svc := &stubOrdersService{
		getFn: func(ctx context.Context, actor internalorders.Actor, idOrCode string) (*internalorders.OrderDetail, error) {
			if idOrCode != "ORD-000042" {
				t.Fatalf("expected ORD-000042, got %q", idOrCode)
			}
			return &internalorders.OrderDetail{Order: models.Order{OrderCode: idOrCode}}, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/orders/{orderId}", OrderDetail(svc, nil))

	req := authedRequest(http.MethodGet, "/orders/ORD-000042", "", enums.ActorRoleOwner)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderListParsesFilters(t *testing.T) {
	svc := &stubOrdersService{
		listFn: func(ctx context.Context, actor internalorders.Actor, params pagination.Params, filters internalorders.ListFilters) ([]internalorders.OrderDetail, error) {
			if params.Limit != 10 || params.Offset != 20 {
				t.Fatalf("unexpected pagination %+v", params)
			}
			if filters.Channel == nil || *filters.Channel != enums.ChannelOnline {
				t.Fatalf("expected online channel filter")
			}
			if filters.Status == nil || *filters.Status != enums.OrderStatusPaid {
				t.Fatalf("expected paid status filter")
			}
			if filters.DateFrom == nil || filters.DateTo == nil {
				t.Fatalf("expected date range filters")
			}
			return nil, nil
		},
	}

	req := authedRequest(http.MethodGet, "/orders?limit=10&offset=20&channel=online&status=paid&from=2025-03-01&to=2025-03-31", "", enums.ActorRoleOwner)
	resp := httptest.NewRecorder()
	OrderList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderListRejectsUnknownChannel(t *testing.T) {
	svc := &stubOrdersService{}
	req := authedRequest(http.MethodGet, "/orders?channel=carrier-pigeon", "", enums.ActorRoleOwner)
	resp := httptest.NewRecorder()
	OrderList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderUpdateRejectsMalformedID(t *testing.T) {
	svc := &stubOrdersService{}

	r := chi.NewRouter()
	r.Patch("/orders/{orderId}", OrderUpdate(svc, metrics.NewOrderMetrics(nil), nil))

	req := authedRequest(http.MethodPatch, "/orders/not-a-uuid", `{"customer_name":"Jun"}`, enums.ActorRoleOwner)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderReplaceItemsReturnsDetail(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{
		replaceFn: func(ctx context.Context, actor internalorders.Actor, id uuid.UUID, input internalorders.ReplaceItemsInput) (*internalorders.OrderDetail, error) {
			if id != orderID {
				t.Fatalf("expected order %s got %s", orderID, id)
			}
			if len(input.Items) != 1 || input.Items[0].SKU != "JUICE-002" {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &internalorders.OrderDetail{
				Order: models.Order{
					ID:             id,
					Channel:        enums.ChannelOnline,
					DiscountAmount: decimal.Zero,
				},
			}, nil
		},
	}

	r := chi.NewRouter()
	r.Put("/orders/{orderId}/items", OrderReplaceItems(svc, metrics.NewOrderMetrics(nil), nil))

	req := authedRequest(http.MethodPut, "/orders/"+orderID.String()+"/items", `{"items":[{"sku":"JUICE-002","qty":3}]}`, enums.ActorRoleOwner)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
