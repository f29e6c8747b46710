package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/moritamo/pos-backend/internal/domain/order"
)

// cartItemJSON is one line item on the wire. Field names follow the
// terminal contract; price is integer yen.
type cartItemJSON struct {
	PrdID    int64  `json:"prd_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// transactionJSON is the extended request form. The legacy form is a bare
// JSON array of cart items.
type transactionJSON struct {
	Items          []cartItemJSON `json:"items"`
	CustID         *int64         `json:"cust_id"`
	UsedPoint      *int64         `json:"used_point"`
	CouponID       *string        `json:"coupon_id"`
	CouponDiscount int64          `json:"coupon_discount"`
}

type transactionCreatedJSON struct {
	Message       string `json:"message"`
	TransactionID int64  `json:"transaction_id"`
	TotalAmount   int64  `json:"total_amount"`
}

// createTransaction handles POST /transactions. The acting employee comes
// from the optional emp_cd header; without it the sale is recorded under
// the guest identity.
func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTransaction(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	items := make([]order.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.LineItem{
			ProductID: item.PrdID,
			Code:      item.Code,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	receipt, err := h.orders.Record(r.Context(), order.RecordRequest{
		Items:          items,
		EmpCode:        r.Header.Get("emp_cd"),
		CustID:         req.CustID,
		UsedPoint:      req.UsedPoint,
		CouponID:       req.CouponID,
		CouponDiscount: req.CouponDiscount,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionCreatedJSON{
		Message:       "transaction recorded",
		TransactionID: receipt.TransactionID,
		TotalAmount:   receipt.Total,
	})
}

// decodeTransaction accepts both request forms: the legacy bare array of
// items, and the wrapper object with coupon and customer references.
func decodeTransaction(body io.Reader) (*transactionJSON, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []cartItemJSON
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return &transactionJSON{Items: items}, nil
	}

	var req transactionJSON
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// writeOrderError maps the coordinator's error taxonomy onto HTTP status
// codes: client-caused failures are 400, store failures 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidDiscount):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var liErr *order.InvalidLineItemError
	if errors.As(err, &liErr) {
		writeError(w, http.StatusBadRequest, liErr.Error())
		return
	}

	var uaErr *order.UnknownActorError
	if errors.As(err, &uaErr) {
		writeError(w, http.StatusBadRequest, uaErr.Error())
		return
	}

	serverError(w, r, err)
}
