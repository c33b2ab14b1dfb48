package book

import (
	"testing"

	"github.com/shopspring/decimal"
)

// checkSideInvariants asserts the aggregate counters against a walk of the
// ordered index: NumOrders == Σ level.Len(), Volume == Σ level.Volume,
// Depth == number of distinct non-empty levels == size of both indices.
func checkSideInvariants(t *testing.T, s *BookSide) {
	t.Helper()

	orders := 0
	levels := 0
	volume := decimal.Zero
	s.Ascend(func(l *PriceLevel) bool {
		if l.Len() == 0 {
			t.Fatalf("empty level stored at price %s", l.Price)
		}
		orders += l.Len()
		volume = volume.Add(l.Volume)
		levels++
		return true
	})

	if s.NumOrders != orders {
		t.Fatalf("NumOrders=%d but levels hold %d orders", s.NumOrders, orders)
	}
	if !s.Volume.Equal(volume) {
		t.Fatalf("Volume=%s but levels hold %s", s.Volume, volume)
	}
	if s.Depth != levels {
		t.Fatalf("Depth=%d but tree has %d levels", s.Depth, levels)
	}
	if len(s.prices) != levels || s.tree.Size() != levels {
		t.Fatalf("index sizes disagree: map=%d tree=%d levels=%d",
			len(s.prices), s.tree.Size(), levels)
	}
}

func TestBookSideAppendCreatesLevelOnce(t *testing.T) {
	s := NewBookSide()

	s.Append(newTestOrder(Ask, "50", "10"))
	s.Append(newTestOrder(Ask, "50", "5"))
	s.Append(newTestOrder(Ask, "75", "1"))

	if s.Depth != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth)
	}
	if s.NumOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", s.NumOrders)
	}
	checkSideInvariants(t, s)
}

func TestBookSideSamePriceDifferentScaleSharesLevel(t *testing.T) {
	s := NewBookSide()

	s.Append(newTestOrder(Ask, "50", "1"))
	s.Append(newTestOrder(Ask, "50.00", "1"))

	if s.Depth != 1 {
		t.Fatalf("50 and 50.00 must land on the same level, depth=%d", s.Depth)
	}
	checkSideInvariants(t, s)
}

func TestBookSideMinMax(t *testing.T) {
	s := NewBookSide()
	if s.MinLevel() != nil || s.MaxLevel() != nil {
		t.Fatalf("empty side must have no best level")
	}

	s.Append(newTestOrder(Ask, "75", "1"))
	s.Append(newTestOrder(Ask, "50", "1"))
	s.Append(newTestOrder(Ask, "60", "1"))

	if !s.MinLevel().Price.Equal(dec("50")) {
		t.Fatalf("expected min 50, got %s", s.MinLevel().Price)
	}
	if !s.MaxLevel().Price.Equal(dec("75")) {
		t.Fatalf("expected max 75, got %s", s.MaxLevel().Price)
	}
}

func TestBookSideReduceFrontAdjustsVolume(t *testing.T) {
	s := NewBookSide()
	o := newTestOrder(Ask, "50", "10")
	s.Append(o)
	s.Append(newTestOrder(Ask, "50", "3"))

	reduced := *o
	reduced.Quantity = dec("6")
	s.ReduceFront(s.Level(dec("50")), reduced)

	if !s.Volume.Equal(dec("9")) {
		t.Fatalf("expected side volume 9 after reduce, got %s", s.Volume)
	}
	if s.NumOrders != 2 || s.Depth != 1 {
		t.Fatalf("reduce must not change counts: orders=%d depth=%d", s.NumOrders, s.Depth)
	}
	checkSideInvariants(t, s)
}

func TestBookSideRemoveDeletesEmptyLevel(t *testing.T) {
	s := NewBookSide()
	o := newTestOrder(Bid, "45", "7")
	s.Append(o)
	s.Append(newTestOrder(Bid, "44", "3"))

	removed := s.Remove(o)
	if removed == nil || removed.ID != o.ID {
		t.Fatalf("expected to remove the order")
	}
	if s.Depth != 1 {
		t.Fatalf("sole order removed but level survived, depth=%d", s.Depth)
	}
	if s.Level(dec("45")) != nil {
		t.Fatalf("direct index still holds the deleted level")
	}
	if s.tree.Find(dec("45")) != nil {
		t.Fatalf("ordered index still holds the deleted level")
	}
	checkSideInvariants(t, s)
}

func TestBookSideRemoveUnknownPrice(t *testing.T) {
	s := NewBookSide()
	s.Append(newTestOrder(Bid, "45", "7"))

	if s.Remove(newTestOrder(Bid, "46", "7")) != nil {
		t.Fatalf("removing at an unknown price should be a no-op")
	}
	checkSideInvariants(t, s)
}

func TestBookSideAppendRemoveRoundTrip(t *testing.T) {
	s := NewBookSide()
	s.Append(newTestOrder(Ask, "50", "10"))

	volume, orders, depth := s.Volume, s.NumOrders, s.Depth

	o := newTestOrder(Ask, "51", "4")
	s.Append(o)
	s.Remove(o)

	if !s.Volume.Equal(volume) || s.NumOrders != orders || s.Depth != depth {
		t.Fatalf("append+remove did not restore the side: volume=%s orders=%d depth=%d",
			s.Volume, s.NumOrders, s.Depth)
	}
	checkSideInvariants(t, s)
}
