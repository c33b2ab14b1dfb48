package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clobworks/matchbook/internal/book"
)

func main() {
	b := book.NewOrderBook()

	// seed resting liquidity: two asks, one bid
	b.Append(book.NewOrder(book.Ask,
		decimal.RequireFromString("10.01"),
		decimal.RequireFromString("50.00"),
		time.Now()))
	b.Append(book.NewOrder(book.Ask,
		decimal.RequireFromString("10.01"),
		decimal.RequireFromString("75.00"),
		time.Now()))
	b.Append(book.NewOrder(book.Bid,
		decimal.RequireFromString("10.01"),
		decimal.RequireFromString("45.00"),
		time.Now()))

	fmt.Println("Submitting market order...")

	res, err := b.SubmitMarketOrder(book.Bid, decimal.RequireFromString("20.00"))
	if err != nil {
		fmt.Println("submit failed:", err)
		return
	}

	fmt.Println("quantity filled:", res.QuantityFilled)
	for _, f := range res.Fills {
		fmt.Printf("  %s %s @ %s (order %s)\n", f.Status, f.Quantity, f.Price, f.OrderID)
	}
	fmt.Printf("resting orders left: %d (bids depth=%d, asks depth=%d)\n",
		b.Len(), b.Bids().Depth, b.Asks().Depth)
}
