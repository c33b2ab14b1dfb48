package engine

import (
	"github.com/clobworks/matchbook/internal/book"
)

// LevelDepth is one price level's aggregate view.
type LevelDepth struct {
	Price  string `json:"price"`
	Volume string `json:"volume"`
	Orders int    `json:"orders"`
}

// SideDepth summarizes one side of the book, best price first.
type SideDepth struct {
	BestPrice string       `json:"best_price,omitempty"`
	Volume    string       `json:"volume"`
	NumOrders int          `json:"num_orders"`
	Depth     int          `json:"depth"`
	Levels    []LevelDepth `json:"levels"`
}

// Depth is a point-in-time aggregate of the whole book.
type Depth struct {
	Market string    `json:"market"`
	Bids   SideDepth `json:"bids"`
	Asks   SideDepth `json:"asks"`
}

func (e *Engine) snapshotDepth() Depth {
	d := Depth{
		Market: e.market,
		Bids:   sideDepth(e.book.Bids(), false),
		Asks:   sideDepth(e.book.Asks(), true),
	}
	return d
}

func sideDepth(s *book.BookSide, ascending bool) SideDepth {
	d := SideDepth{
		Volume:    s.Volume.String(),
		NumOrders: s.NumOrders,
		Depth:     s.Depth,
		Levels:    make([]LevelDepth, 0, s.Depth),
	}

	collect := func(l *book.PriceLevel) bool {
		d.Levels = append(d.Levels, LevelDepth{
			Price:  l.Price.String(),
			Volume: l.Volume.String(),
			Orders: l.Len(),
		})
		return true
	}
	// bids read best-first from the top, asks from the bottom
	if ascending {
		s.Ascend(collect)
	} else {
		s.Descend(collect)
	}

	if len(d.Levels) > 0 {
		d.BestPrice = d.Levels[0].Price
	}
	return d
}
