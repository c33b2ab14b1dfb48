package book

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceTreeInsertFindDelete(t *testing.T) {
	tree := newPriceTree()

	l1 := NewPriceLevel(dec("100"))
	tree.Insert(l1)
	if tree.Find(dec("100")) != l1 {
		t.Error("Find did not return the inserted level")
	}

	tree.Insert(NewPriceLevel(dec("200")))
	if !tree.Min().Price.Equal(dec("100")) {
		t.Error("expected min=100")
	}
	if !tree.Max().Price.Equal(dec("200")) {
		t.Error("expected max=200")
	}

	if !tree.Delete(dec("100")) {
		t.Error("Delete failed")
	}
	if tree.Find(dec("100")) != nil {
		t.Error("expected level 100 to be gone")
	}
}

func TestPriceTreeDeleteNonExistent(t *testing.T) {
	tree := newPriceTree()
	if tree.Delete(dec("123")) {
		t.Error("expected false when deleting a non-existent level")
	}
}

func TestPriceTreeEmptyMinMax(t *testing.T) {
	tree := newPriceTree()
	if tree.Min() != nil || tree.Max() != nil {
		t.Error("expected nil min/max on empty tree")
	}
}

func TestPriceTreeFindEqualValueDifferentScale(t *testing.T) {
	tree := newPriceTree()
	l := NewPriceLevel(dec("50"))
	tree.Insert(l)
	if tree.Find(dec("50.00")) != l {
		t.Error("Cmp-based lookup must treat 50 and 50.00 as equal")
	}
}

func TestPriceTreeOrderedWalk(t *testing.T) {
	tree := newPriceTree()
	rng := rand.New(rand.NewSource(1))
	for _, i := range rng.Perm(200) {
		tree.Insert(NewPriceLevel(decimal.NewFromInt(int64(i + 1))))
	}
	if tree.Size() != 200 {
		t.Fatalf("expected 200 levels, got %d", tree.Size())
	}

	prev := decimal.Zero
	count := 0
	tree.Ascend(func(l *PriceLevel) bool {
		if !l.Price.GreaterThan(prev) {
			t.Fatalf("ascend out of order: %s after %s", l.Price, prev)
		}
		prev = l.Price
		count++
		return true
	})
	if count != 200 {
		t.Fatalf("ascend visited %d of 200 levels", count)
	}

	// delete half, walk again
	for i := 1; i <= 200; i += 2 {
		if !tree.Delete(decimal.NewFromInt(int64(i))) {
			t.Fatalf("delete %d failed", i)
		}
	}
	prev = decimal.Zero
	count = 0
	tree.Descend(func(l *PriceLevel) bool {
		count++
		return true
	})
	if count != 100 || tree.Size() != 100 {
		t.Fatalf("expected 100 levels after deletes, walked %d, size %d", count, tree.Size())
	}
}
