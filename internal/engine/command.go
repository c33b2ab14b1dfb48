package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clobworks/matchbook/internal/book"
)

type commandType int

const (
	cmdLimit commandType = iota
	cmdMarket
	cmdAppend
	cmdCancel
	cmdGet
	cmdDepth
)

type command struct {
	typ      commandType
	side     book.Side
	quantity decimal.Decimal
	price    decimal.Decimal
	order    *book.Order // used when typ == cmdAppend
	id       uuid.UUID   // used when typ == cmdCancel or cmdGet
	resp     chan any    // the loop sends the reply here
}

type submitReply struct {
	result book.OrderResult
	err    error
}

type cancelReply struct {
	order *book.Order // nil when the id is unknown
}

type getReply struct {
	order book.Order
	ok    bool
}

type depthReply struct {
	depth Depth
}
