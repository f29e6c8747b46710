package order

// Totals holds the monetary outcome of a cart computation, in yen.
type Totals struct {
	// Subtotal is the tax-exclusive sum of price * quantity.
	Subtotal int64
	// Total is the tax-inclusive amount, floored.
	Total int64
}

// ComputeTotals validates the cart and computes the tax-exclusive subtotal
// and the tax-inclusive total. All arithmetic is integer yen; the
// tax-inclusive amount is floor(subtotal * (100+rate) / 100). The floor
// direction determines the exact tax remitted and must not change.
//
// It is pure: no I/O, no side effects, deterministic for a given input.
func ComputeTotals(items []LineItem, taxRatePercent int) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrEmptyCart
	}

	var subtotal int64
	for _, item := range items {
		if item.Price < 0 {
			return Totals{}, &InvalidLineItemError{ProductCode: item.Code, Reason: "negative price"}
		}
		if item.Quantity <= 0 {
			return Totals{}, &InvalidLineItemError{ProductCode: item.Code, Reason: "quantity must be greater than 0"}
		}
		subtotal += item.Price * int64(item.Quantity)
	}

	// Integer division floors for non-negative operands, which is exactly
	// the required rounding.
	total := subtotal * int64(100+taxRatePercent) / 100

	return Totals{Subtotal: subtotal, Total: total}, nil
}

// ApplyDiscount subtracts an externally supplied coupon discount from the
// tax-inclusive total. The discount must already be a finished amount:
// non-negative and at most the total.
func ApplyDiscount(total, discount int64) (int64, error) {
	if discount < 0 || discount > total {
		return 0, ErrInvalidDiscount
	}
	return total - discount, nil
}
