package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moritamo/pos-backend/internal/domain/customer"
)

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "POS System API"}`, rec.Body.String())
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/products", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []productJSON `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Green Tea", resp.Products[0].Name)
}

func TestGetProductByCode(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/products/code/4901234567890", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp productJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(150), resp.Price)
}

func TestGetProductByCode_NotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/products/code/0000000000000", "")

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetEmployeeByCode(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/employees/EMP001", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp employeeJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EMP001", resp.EnpCd)
	assert.True(t, resp.IsActive)
}

func TestGetEmployeeByCode_NotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/employees/NOBODY", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCoupon_NotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/coupons/CPMISSING", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCustomer(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodPost, "/customers",
		`{"email": "taro@example.com", "name": "Yamada Taro", "point": 50}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message  string       `json:"message"`
		Customer customerJSON `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Customer.CustID)
	assert.Equal(t, int64(50), resp.Customer.Point)
}

func TestCreateCustomer_MalformedBody(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodPost, "/customers", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCustomerByEmail_NotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodGet, "/customers/email/nobody@example.com", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCustomerPoints(t *testing.T) {
	h := newTestHandler(&fakeStore{})
	hc := h.customers.(*fakeCustomers)
	hc.byEmail["taro@example.com"] = &customer.Customer{
		ID: 1, Email: "taro@example.com", Name: "Yamada Taro", Point: 10, Active: true,
	}

	rec := doRequest(t, h, http.MethodPut, "/customers/1/points", `{"points": 42}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), hc.byEmail["taro@example.com"].Point)
}

func TestUpdateCustomerPoints_BadID(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := doRequest(t, h, http.MethodPut, "/customers/abc/points", `{"points": 42}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
