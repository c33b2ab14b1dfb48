package book

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestOrder(side Side, price, qty string) *Order {
	return NewOrder(side, dec(qty), dec(price), time.Now())
}

func TestPriceLevelAppendAndVolume(t *testing.T) {
	l := NewPriceLevel(dec("50"))

	l.Append(newTestOrder(Ask, "50", "10"))
	l.Append(newTestOrder(Ask, "50", "2.5"))

	if l.Len() != 2 {
		t.Fatalf("expected 2 orders, got %d", l.Len())
	}
	if !l.Volume.Equal(dec("12.5")) {
		t.Fatalf("expected volume 12.5, got %s", l.Volume)
	}
}

func TestPriceLevelFrontIsOldest(t *testing.T) {
	l := NewPriceLevel(dec("50"))
	first := newTestOrder(Ask, "50", "1")
	second := newTestOrder(Ask, "50", "2")

	l.Append(first)
	l.Append(second)

	if l.Front().ID != first.ID {
		t.Fatalf("front should be the first appended order")
	}
	// peeking must not remove
	if l.Len() != 2 {
		t.Fatalf("Front removed an order")
	}
}

func TestPriceLevelRemove(t *testing.T) {
	l := NewPriceLevel(dec("50"))
	a := newTestOrder(Ask, "50", "3")
	b := newTestOrder(Ask, "50", "4")
	l.Append(a)
	l.Append(b)

	removed := l.Remove(a.ID)
	if removed == nil || removed.ID != a.ID {
		t.Fatalf("expected to remove order a")
	}
	if l.Len() != 1 || !l.Volume.Equal(dec("4")) {
		t.Fatalf("expected 1 order with volume 4, got %d / %s", l.Len(), l.Volume)
	}

	if l.Remove(a.ID) != nil {
		t.Fatalf("removing an absent order should return nil")
	}
}

func TestPriceLevelReplaceFrontKeepsPosition(t *testing.T) {
	l := NewPriceLevel(dec("75"))
	a := newTestOrder(Ask, "75", "10")
	b := newTestOrder(Ask, "75", "10")
	l.Append(a)
	l.Append(b)

	reduced := *a
	reduced.Quantity = dec("4")
	l.ReplaceFront(reduced)

	front := l.Front()
	if front.ID != a.ID {
		t.Fatalf("replaceFront moved the head")
	}
	if !front.Quantity.Equal(dec("4")) {
		t.Fatalf("expected head quantity 4, got %s", front.Quantity)
	}
	if !l.Volume.Equal(dec("14")) {
		t.Fatalf("expected volume 14 after replace, got %s", l.Volume)
	}
}
