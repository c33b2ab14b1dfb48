package book

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderBook owns the two sides and a global id index of every resting
// order. The id index and the side levels share *Order pointers, so a
// partial fill mutating the level head is visible through both; they can
// only drift if a bookkeeping bug loses one of them, which the matching
// loop reports as ErrBookCorrupted.
//
// The book is not safe for concurrent use. All writers must go through one
// serializing context (see engine.Engine); locking individual collections
// cannot preserve the cross-index invariants.
type OrderBook struct {
	orders map[uuid.UUID]*Order
	bids   *BookSide
	asks   *BookSide
	now    func() time.Time
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		orders: make(map[uuid.UUID]*Order),
		bids:   NewBookSide(),
		asks:   NewBookSide(),
		now:    time.Now,
	}
}

// NewOrderBookWithClock pins the arrival-timestamp source; tests use this
// to make time priority deterministic.
func NewOrderBookWithClock(now func() time.Time) *OrderBook {
	b := NewOrderBook()
	b.now = now
	return b
}

func (b *OrderBook) Bids() *BookSide { return b.bids }
func (b *OrderBook) Asks() *BookSide { return b.asks }

// sweep bundles the side-dependent choices a submission makes: which side
// it drains, which end of that side is the best price, and whether a limit
// price still crosses a level. Resolved once per submission so the market
// and limit paths cannot drift apart.
type sweep struct {
	opposing *BookSide
	best     func(*BookSide) *PriceLevel
	crosses  func(limit, level decimal.Decimal) bool
}

func (b *OrderBook) sweepFor(side Side) sweep {
	if side == Bid {
		// A bid drains asks, cheapest first; it crosses while its limit
		// is at or above the level price.
		return sweep{
			opposing: b.asks,
			best:     (*BookSide).MinLevel,
			crosses:  decimal.Decimal.GreaterThanOrEqual,
		}
	}
	return sweep{
		opposing: b.bids,
		best:     (*BookSide).MaxLevel,
		crosses:  decimal.Decimal.LessThanOrEqual,
	}
}

// SubmitMarketOrder trades quantity against the opposing side until it is
// satisfied or liquidity runs out. Whatever cannot fill is simply dropped:
// no resting order is created and no error raised; QuantityFilled tells
// the caller what actually traded.
func (b *OrderBook) SubmitMarketOrder(side Side, quantity decimal.Decimal) (OrderResult, error) {
	result := OrderResult{QuantityFilled: decimal.Zero}
	if !quantity.IsPositive() {
		return result, ErrInvalidQuantity
	}

	sw := b.sweepFor(side)
	remaining := quantity

	for remaining.IsPositive() && sw.opposing.NumOrders > 0 {
		level := sw.best(sw.opposing)
		if level == nil {
			break
		}
		filled, err := b.fillAtPriceLevel(sw.opposing, level, remaining, &result)
		if err != nil {
			return result, err
		}
		remaining = remaining.Sub(filled)
	}
	return result, nil
}

// SubmitLimitOrder is the market loop plus a crossing check: a level only
// trades while its price is at or inside the limit (the boundary is
// inclusive, so a bid at 50 lifts an ask at 50). Any unfilled remainder
// rests on the submitting side at the limit price with a fresh arrival
// timestamp and is returned as Resting.
func (b *OrderBook) SubmitLimitOrder(side Side, quantity, price decimal.Decimal) (OrderResult, error) {
	result := OrderResult{QuantityFilled: decimal.Zero}
	if !quantity.IsPositive() {
		return result, ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return result, ErrInvalidPrice
	}

	sw := b.sweepFor(side)
	remaining := quantity

	for remaining.IsPositive() && sw.opposing.NumOrders > 0 {
		level := sw.best(sw.opposing)
		if level == nil || !sw.crosses(price, level.Price) {
			break
		}
		filled, err := b.fillAtPriceLevel(sw.opposing, level, remaining, &result)
		if err != nil {
			return result, err
		}
		remaining = remaining.Sub(filled)
	}

	// No time-in-force beyond GTC: the remainder rests until matched or
	// explicitly removed.
	if remaining.IsPositive() {
		resting := NewOrder(side, remaining, price, b.now())
		b.Append(resting)
		result.Resting = resting
	}
	return result, nil
}

// fillAtPriceLevel drains one level oldest-first. The head either absorbs
// all remaining quantity (partial fill: shrink it in place, it keeps its
// queue slot) or is consumed whole (full fill: remove it from the book,
// cascading level and index cleanup). Returns the quantity traded here.
func (b *OrderBook) fillAtPriceLevel(side *BookSide, level *PriceLevel, quantity decimal.Decimal, result *OrderResult) (decimal.Decimal, error) {
	filled := decimal.Zero
	remaining := quantity

	for remaining.IsPositive() && level.Len() > 0 {
		head := level.Front()

		if remaining.LessThan(head.Quantity) {
			if _, ok := b.orders[head.ID]; !ok {
				return filled, ErrBookCorrupted
			}
			reduced := *head
			reduced.Quantity = head.Quantity.Sub(remaining)
			side.ReduceFront(level, reduced)

			result.Fills = append(result.Fills, Fill{
				OrderID:  head.ID,
				Status:   FillPartial,
				Price:    level.Price,
				Quantity: remaining,
			})
			result.QuantityFilled = result.QuantityFilled.Add(remaining)
			filled = filled.Add(remaining)
			remaining = decimal.Zero
			continue
		}

		removed := b.Remove(head.ID)
		if removed == nil {
			// The level head is unknown to the id index: the dual-index
			// invariant is already broken and nothing further can be
			// trusted.
			return filled, ErrBookCorrupted
		}
		result.Fills = append(result.Fills, Fill{
			OrderID:  removed.ID,
			Status:   FillFull,
			Price:    removed.Price,
			Quantity: removed.Quantity,
		})
		result.QuantityFilled = result.QuantityFilled.Add(removed.Quantity)
		filled = filled.Add(removed.Quantity)
		remaining = remaining.Sub(removed.Quantity)
	}
	return filled, nil
}

// Append places a fully-formed order on the book without matching. Used to
// seed liquidity and to rest a limit order's remainder.
func (b *OrderBook) Append(o *Order) {
	b.orders[o.ID] = o
	if o.Side == Ask {
		b.asks.Append(o)
	} else {
		b.bids.Append(o)
	}
}

// Remove deletes a resting order by id, cascading through its side's
// level bookkeeping. Returns nil when the id is unknown.
func (b *OrderBook) Remove(id uuid.UUID) *Order {
	o, ok := b.orders[id]
	if !ok {
		return nil
	}
	delete(b.orders, id)
	if o.Side == Ask {
		return b.asks.Remove(o)
	}
	return b.bids.Remove(o)
}

// Get returns a snapshot of a resting order. The copy keeps callers from
// reaching into live book state.
func (b *OrderBook) Get(id uuid.UUID) (Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Len is the number of resting orders across both sides.
func (b *OrderBook) Len() int { return len(b.orders) }
