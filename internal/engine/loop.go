package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clobworks/matchbook/internal/book"
)

// TradeStore persists the fills a submission produced. A nil store
// disables persistence; matching never depends on it.
type TradeStore interface {
	InsertFills(ctx context.Context, market string, taker uuid.UUID, fills []book.Fill) error
}

// TradePublisher pushes fills to downstream consumers. A nil publisher
// disables publishing.
type TradePublisher interface {
	Publish(ctx context.Context, market string, taker uuid.UUID, fills []book.Fill) error
}

// PriceRecorder receives the last traded price after each fill batch.
type PriceRecorder interface {
	Set(market string, price decimal.Decimal)
}

// Engine serializes all access to one OrderBook behind a command channel.
// Exactly one goroutine (Run) touches the book, which is what upholds the
// book's single-writer contract and its cross-index invariants; callers
// talk to it through the Submit/Cancel/Get wrappers.
type Engine struct {
	book   *book.OrderBook
	market string
	cmds   chan command
	done   chan struct{}

	store TradeStore
	pub   TradePublisher
	last  PriceRecorder
	log   *zap.Logger
}

type Option func(*Engine)

func WithStore(s TradeStore) Option { return func(e *Engine) { e.store = s } }

func WithPublisher(p TradePublisher) Option { return func(e *Engine) { e.pub = p } }

func WithPriceRecorder(r PriceRecorder) Option { return func(e *Engine) { e.last = r } }

func New(market string, buffer int, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		book:   book.NewOrderBook(),
		market: market,
		cmds:   make(chan command, buffer),
		done:   make(chan struct{}),
		log:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drains commands until ctx is canceled. Every command runs to
// completion before the next is picked up; there is no partial-application
// visibility.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case cmd := <-e.cmds:
			e.handle(ctx, cmd)
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has exited.
func (e *Engine) Done() <-chan struct{} { return e.done }

func (e *Engine) handle(ctx context.Context, cmd command) {
	switch cmd.typ {
	case cmdLimit:
		res, err := e.book.SubmitLimitOrder(cmd.side, cmd.quantity, cmd.price)
		if err == nil && len(res.Fills) > 0 {
			e.afterMatch(ctx, uuid.New(), res.Fills)
		}
		cmd.resp <- submitReply{result: res, err: err}

	case cmdMarket:
		res, err := e.book.SubmitMarketOrder(cmd.side, cmd.quantity)
		if err == nil && len(res.Fills) > 0 {
			e.afterMatch(ctx, uuid.New(), res.Fills)
		}
		cmd.resp <- submitReply{result: res, err: err}

	case cmdAppend:
		e.book.Append(cmd.order)
		cmd.resp <- struct{}{}

	case cmdCancel:
		cmd.resp <- cancelReply{order: e.book.Remove(cmd.id)}

	case cmdGet:
		o, ok := e.book.Get(cmd.id)
		cmd.resp <- getReply{order: o, ok: ok}

	case cmdDepth:
		cmd.resp <- depthReply{depth: e.snapshotDepth()}
	}
}

// afterMatch persists and publishes a fill batch. Failures are logged, not
// propagated: the match already happened and the book has moved on.
func (e *Engine) afterMatch(ctx context.Context, taker uuid.UUID, fills []book.Fill) {
	if e.store != nil {
		if err := e.store.InsertFills(ctx, e.market, taker, fills); err != nil {
			e.log.Error("persist fills failed",
				zap.String("taker", taker.String()), zap.Error(err))
		}
	}
	if e.pub != nil {
		if err := e.pub.Publish(ctx, e.market, taker, fills); err != nil {
			e.log.Error("publish fills failed",
				zap.String("taker", taker.String()), zap.Error(err))
		}
	}
	if e.last != nil {
		e.last.Set(e.market, fills[len(fills)-1].Price)
	}
}

func (e *Engine) send(ctx context.Context, cmd command) (any, error) {
	select {
	case e.cmds <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case reply := <-cmd.resp:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SubmitLimit places a limit order; the unfilled remainder rests.
func (e *Engine) SubmitLimit(ctx context.Context, side book.Side, quantity, price decimal.Decimal) (book.OrderResult, error) {
	reply, err := e.send(ctx, command{
		typ: cmdLimit, side: side, quantity: quantity, price: price,
		resp: make(chan any, 1),
	})
	if err != nil {
		return book.OrderResult{}, err
	}
	r := reply.(submitReply)
	return r.result, r.err
}

// SubmitMarket places a market order; whatever liquidity cannot satisfy is
// dropped.
func (e *Engine) SubmitMarket(ctx context.Context, side book.Side, quantity decimal.Decimal) (book.OrderResult, error) {
	reply, err := e.send(ctx, command{
		typ: cmdMarket, side: side, quantity: quantity,
		resp: make(chan any, 1),
	})
	if err != nil {
		return book.OrderResult{}, err
	}
	r := reply.(submitReply)
	return r.result, r.err
}

// Append seeds a fully-formed resting order without matching.
func (e *Engine) Append(ctx context.Context, o *book.Order) error {
	_, err := e.send(ctx, command{typ: cmdAppend, order: o, resp: make(chan any, 1)})
	return err
}

// Cancel removes a resting order by id. A nil order means the id was
// unknown; that is an ordinary miss, not an error.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (*book.Order, error) {
	reply, err := e.send(ctx, command{typ: cmdCancel, id: id, resp: make(chan any, 1)})
	if err != nil {
		return nil, err
	}
	return reply.(cancelReply).order, nil
}

// Get returns a snapshot of a resting order.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (book.Order, bool, error) {
	reply, err := e.send(ctx, command{typ: cmdGet, id: id, resp: make(chan any, 1)})
	if err != nil {
		return book.Order{}, false, err
	}
	r := reply.(getReply)
	return r.order, r.ok, nil
}

// Depth returns an aggregate view of both sides.
func (e *Engine) Depth(ctx context.Context) (Depth, error) {
	reply, err := e.send(ctx, command{typ: cmdDepth, resp: make(chan any, 1)})
	if err != nil {
		return Depth{}, err
	}
	return reply.(depthReply).depth, nil
}
