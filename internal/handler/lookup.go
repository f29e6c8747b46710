package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/moritamo/pos-backend/internal/domain/coupon"
	"github.com/moritamo/pos-backend/internal/domain/customer"
	"github.com/moritamo/pos-backend/internal/domain/employee"
	"github.com/moritamo/pos-backend/internal/domain/product"
)

type productJSON struct {
	PrdID int64  `json:"prd_id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func toProductJSON(p product.Product) productJSON {
	return productJSON{PrdID: p.ID, Code: p.Code, Name: p.Name, Price: p.Price}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}

	out := make([]productJSON, len(products))
	for i, p := range products {
		out[i] = toProductJSON(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) getProductByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	p, err := h.products.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(*p))
}

type employeeJSON struct {
	EnpCd    string `json:"enp_cd"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) getEmployeeByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	e, err := h.employees.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employeeJSON{
		EnpCd:    e.Code,
		Name:     e.Name,
		Role:     e.Role,
		IsActive: e.Active,
	})
}

type couponJSON struct {
	CouponID  string `json:"coupon_id"`
	Name      string `json:"name"`
	Discount  int64  `json:"discount"`
	Type      string `json:"type"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
	LimitCnt  *int   `json:"limit_cnt"`
	IsActive  bool   `json:"is_active"`
}

func (h *Handler) getCouponByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.coupons.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couponJSON{
		CouponID:  c.ID,
		Name:      c.Name,
		Discount:  c.Discount,
		Type:      string(c.Type),
		ValidFrom: c.ValidFrom.Format(time.DateOnly),
		ValidTo:   c.ValidTo.Format(time.DateOnly),
		LimitCnt:  c.LimitCnt,
		IsActive:  c.Active,
	})
}

type customerJSON struct {
	CustID   int64  `json:"cust_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Point    int64  `json:"point"`
	IsActive bool   `json:"is_active"`
}

func toCustomerJSON(c customer.Customer) customerJSON {
	return customerJSON{
		CustID:   c.ID,
		Email:    c.Email,
		Name:     c.Name,
		Point:    c.Point,
		IsActive: c.Active,
	}
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Point int64  `json:"point"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	c := customer.Customer{Email: req.Email, Name: req.Name, Point: req.Point, Active: true}
	id, err := h.customers.Create(r.Context(), &c)
	if err != nil {
		serverError(w, r, err)
		return
	}
	c.ID = id

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "customer created",
		"customer": toCustomerJSON(c),
	})
}

func (h *Handler) getCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	c, err := h.customers.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerJSON(*c))
}

func (h *Handler) updateCustomerPoints(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req struct {
		Points int64 `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	c, err := h.customers.UpdatePoints(r.Context(), id, req.Points)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "points updated",
		"customer": toCustomerJSON(*c),
	})
}
