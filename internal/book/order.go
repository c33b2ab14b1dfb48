package book

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "ASK"
	}
	return "BID"
}

// ParseSide accepts "BID"/"BUY" and "ASK"/"SELL" (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BID", "BUY":
		return Bid, nil
	case "ASK", "SELL":
		return Ask, nil
	}
	return Bid, fmt.Errorf("unknown side %q", s)
}

// Opposite returns the side a submission matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

var (
	// ErrInvalidQuantity rejects zero or negative quantities before they
	// reach the matching loop.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice rejects zero or negative limit prices.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrBookCorrupted signals that the id index and the side levels have
	// drifted apart. Once this fires no further matching output can be
	// trusted; the book must be rebuilt.
	ErrBookCorrupted = errors.New("order book corrupted: id index and price levels disagree")
)

// Order is a single unit of resting interest. Once on the book the only
// mutation it sees is a partial fill shrinking Quantity in place; ID and
// Timestamp never change, which is what preserves its time priority.
type Order struct {
	ID        uuid.UUID
	Side      Side
	Price     decimal.Decimal
	Quantity  decimal.Decimal
	Timestamp time.Time
}

// NewOrder mints an order with a fresh id at the given arrival time.
func NewOrder(side Side, quantity, price decimal.Decimal, ts time.Time) *Order {
	return &Order{
		ID:        uuid.New(),
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Timestamp: ts,
	}
}

type FillStatus int

const (
	FillFull FillStatus = iota
	FillPartial
)

func (s FillStatus) String() string {
	if s == FillPartial {
		return "PARTIAL"
	}
	return "FULL"
}

// Fill records quantity traded against one resting order.
type Fill struct {
	OrderID  uuid.UUID
	Status   FillStatus
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderResult is what a submission returns: the fills it produced, in
// execution order, the total traded, and the resting remainder if the
// submission was a limit order that did not fully fill.
type OrderResult struct {
	Fills          []Fill
	QuantityFilled decimal.Decimal
	Resting        *Order
}
