// Package handler exposes the POS API over plain net/http. Handlers
// translate between the JSON wire contract and the domain services,
// classify domain errors onto HTTP status codes, and nothing else.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/moritamo/pos-backend/internal/domain/coupon"
	"github.com/moritamo/pos-backend/internal/domain/customer"
	"github.com/moritamo/pos-backend/internal/domain/employee"
	"github.com/moritamo/pos-backend/internal/domain/order"
	"github.com/moritamo/pos-backend/internal/domain/product"
)

// Handler bundles the API endpoints with their domain dependencies.
type Handler struct {
	products  product.Repository
	employees employee.Repository
	customers customer.Repository
	coupons   coupon.Repository
	orders    *order.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	employees employee.Repository,
	customers customer.Repository,
	coupons coupon.Repository,
	orders *order.Service,
) *Handler {
	return &Handler{
		products:  products,
		employees: employees,
		customers: customers,
		coupons:   coupons,
		orders:    orders,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/code/{code}", h.getProductByCode)
	mux.HandleFunc("GET /employees/{code}", h.getEmployeeByCode)
	mux.HandleFunc("GET /coupons/{id}", h.getCouponByID)
	mux.HandleFunc("POST /customers", h.createCustomer)
	mux.HandleFunc("GET /customers/email/{email}", h.getCustomerByEmail)
	mux.HandleFunc("PUT /customers/{id}/points", h.updateCustomerPoints)
	mux.HandleFunc("POST /transactions", h.createTransaction)
	// Tolerate the trailing slash some terminals send.
	mux.HandleFunc("POST /transactions/{$}", h.createTransaction)
	return mux
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "POS System API"})
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire; an encode failure here can
	// only mean a dropped connection.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// serverError logs the unclassified failure and returns an opaque 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
