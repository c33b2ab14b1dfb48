package book

import (
	"github.com/shopspring/decimal"
)

// BookSide is one half of the book. Levels live in two indices that must
// never disagree: a flat map for exact-price lookup and a red-black tree
// for best-price retrieval. Creating or deleting a level always touches
// both, in the same step.
//
// The map is keyed by Decimal.String(), which renders trailing-zero-free
// canonical form, so "50", "50.0" and "50.00" land on the same level,
// matching the total order the tree uses via Cmp.
type BookSide struct {
	prices map[string]*PriceLevel
	tree   *priceTree

	Volume    decimal.Decimal
	NumOrders int
	Depth     int
}

func NewBookSide() *BookSide {
	return &BookSide{
		prices: make(map[string]*PriceLevel),
		tree:   newPriceTree(),
		Volume: decimal.Zero,
	}
}

// Append queues an order at its price, creating the level if needed.
func (s *BookSide) Append(o *Order) {
	key := o.Price.String()
	level, ok := s.prices[key]
	if !ok {
		level = NewPriceLevel(o.Price)
		s.prices[key] = level
		s.tree.Insert(level)
		s.Depth++
	}

	level.Append(o)
	s.NumOrders++
	s.Volume = s.Volume.Add(o.Quantity)
}

// Remove takes an order out of its level, deleting the level if it empties.
// Returns nil when no level exists at the order's price or the order is not
// queued there.
func (s *BookSide) Remove(o *Order) *Order {
	key := o.Price.String()
	level, ok := s.prices[key]
	if !ok {
		return nil
	}

	removed := level.Remove(o.ID)
	if removed == nil {
		return nil
	}
	s.NumOrders--
	s.Volume = s.Volume.Sub(removed.Quantity)

	if level.Len() == 0 {
		delete(s.prices, key)
		s.tree.Delete(level.Price)
		s.Depth--
	}
	return removed
}

// ReduceFront overwrites the head order at one of this side's levels,
// adjusting the side's aggregate volume by the quantity change so it never
// drifts from the level sums. This is the partial-fill path; NumOrders and
// Depth are untouched because the order stays queued.
func (s *BookSide) ReduceFront(level *PriceLevel, o Order) {
	head := level.Front()
	if head == nil {
		return
	}
	s.Volume = s.Volume.Sub(head.Quantity).Add(o.Quantity)
	level.ReplaceFront(o)
}

// MinLevel returns the level at the lowest price, or nil when the side is
// empty. Best ask.
func (s *BookSide) MinLevel() *PriceLevel {
	if s.Depth == 0 {
		return nil
	}
	return s.tree.Min()
}

// MaxLevel returns the level at the highest price, or nil when the side is
// empty. Best bid.
func (s *BookSide) MaxLevel() *PriceLevel {
	if s.Depth == 0 {
		return nil
	}
	return s.tree.Max()
}

// Level returns the level resting at an exact price, or nil.
func (s *BookSide) Level(price decimal.Decimal) *PriceLevel {
	return s.prices[price.String()]
}

// Ascend walks levels from lowest to highest price.
func (s *BookSide) Ascend(fn func(*PriceLevel) bool) { s.tree.Ascend(fn) }

// Descend walks levels from highest to lowest price.
func (s *BookSide) Descend(fn func(*PriceLevel) bool) { s.tree.Descend(fn) }
