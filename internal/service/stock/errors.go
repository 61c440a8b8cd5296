package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput indicates a malformed or missing required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a site, material or ledger that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoStockRecord indicates a consumption before any inbound was recorded.
	ErrNoStockRecord = errors.New("no stock record")

	// ErrInsufficientStock indicates a consumption larger than the running stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrIndexOutOfRange indicates a point-edit index outside the ledger.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidStockState indicates a recomputed running stock went negative.
	ErrInvalidStockState = errors.New("invalid stock state")
)

// InsufficientStockError carries the available and requested quantities.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock. Available: %s, Requested: %s", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IndexRangeError reports the rejected index and the ledger length.
type IndexRangeError struct {
	Index  int
	Length int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("index %d out of bounds for %d transactions", e.Index, e.Length)
}

func (e *IndexRangeError) Unwrap() error { return ErrIndexOutOfRange }

// StockStateError describes the first transaction whose recomputed stock is invalid.
type StockStateError struct {
	Index      int
	Previous   decimal.Decimal
	Inbound    decimal.Decimal
	Adjustment decimal.Decimal
	Result     decimal.Decimal
}

func (e *StockStateError) Error() string {
	return fmt.Sprintf("invalid stock calculation at index %d: %s + %s - %s = %s",
		e.Index, e.Previous, e.Inbound, e.Adjustment, e.Result)
}

func (e *StockStateError) Unwrap() error { return ErrInvalidStockState }

// Code returns the stable caller-facing category of err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoStockRecord):
		return "no_stock_record"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrInvalidStockState):
		return "invalid_stock_state"
	default:
		return "internal"
	}
}

// Details returns structured context for errors that carry it.
func Details(err error) map[string]any {
	var insufficient *InsufficientStockError
	var rangeErr *IndexRangeError
	var stateErr *StockStateError

	switch {
	case errors.As(err, &insufficient):
		return map[string]any{
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		}
	case errors.As(err, &rangeErr):
		return map[string]any{"index": rangeErr.Index, "length": rangeErr.Length}
	case errors.As(err, &stateErr):
		return map[string]any{
			"index":     stateErr.Index,
			"prevStock": stateErr.Previous,
			"inbound":   stateErr.Inbound,
			"value":     stateErr.Adjustment,
			"newStock":  stateErr.Result,
		}
	default:
		return nil
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
