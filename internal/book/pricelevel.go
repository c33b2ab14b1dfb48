package book

import (
	"container/list"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceLevel holds the FIFO queue of orders resting at a single price.
// Queue order is arrival order, oldest at the front. Volume tracks the sum
// of member quantities. A level is never kept around empty; BookSide
// deletes it once the last order leaves.
type PriceLevel struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
	orders *list.List // of *Order, oldest first
}

func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Volume: decimal.Zero,
		orders: list.New(),
	}
}

func (l *PriceLevel) Len() int { return l.orders.Len() }

// Append pushes an order to the back of the queue.
func (l *PriceLevel) Append(o *Order) {
	l.orders.PushBack(o)
	l.Volume = l.Volume.Add(o.Quantity)
}

// Remove takes an order out of the queue by id, wherever it sits.
// Returns nil if no order with that id is queued here.
func (l *PriceLevel) Remove(id uuid.UUID) *Order {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		o := e.Value.(*Order)
		if o.ID == id {
			l.orders.Remove(e)
			l.Volume = l.Volume.Sub(o.Quantity)
			return o
		}
	}
	return nil
}

// Front peeks at the oldest order without removing it.
func (l *PriceLevel) Front() *Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Order)
}

// ReplaceFront overwrites the head order's fields in place, keeping its
// queue position. This is how a partial fill shrinks the head without
// costing it its time priority.
func (l *PriceLevel) ReplaceFront(o Order) {
	e := l.orders.Front()
	if e == nil {
		return
	}
	head := e.Value.(*Order)
	l.Volume = l.Volume.Sub(head.Quantity).Add(o.Quantity)
	*head = o
}

// Each walks the queue oldest-first; used for depth snapshots.
func (l *PriceLevel) Each(fn func(*Order) bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*Order)) {
			return
		}
	}
}
