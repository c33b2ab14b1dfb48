// Package pricefeed exposes the last traded price per market. The engine
// records a price after every fill batch; readers (the HTTP API) poll it
// without touching the book.
package pricefeed

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Cache stores the latest trade prices for markets in memory.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewCache() *Cache {
	return &Cache{prices: make(map[string]decimal.Decimal)}
}

func (c *Cache) Set(market string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[market] = price
}

func (c *Cache) Get(market string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[market]
	return p, ok
}
