// Package actor is the concurrency embedding the core itself deliberately
// does not provide: it serializes every mutation and query for a set of
// instrument books onto one goroutine's command channel, the way the
// teacher's worker pool serializes connection handling onto a tomb-supervised
// goroutine set. Callers get a normal blocking API; nothing here leaks
// channels or goroutines into engine.Engine.
package actor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lob/internal/common"
	"lob/internal/engine"
)

const commandQueueSize = 256

// ErrStopped is returned for commands submitted to, or still pending in, an
// actor that has been stopped.
var ErrStopped = errors.New("order book actor stopped")

// command is one unit of work run against the engine by the actor's single
// writer goroutine. run's return value is boxed as any and unboxed by the
// method that submitted it, so the command queue stays one concrete type
// regardless of what callers ask for.
type command struct {
	id    uuid.UUID
	run   func(eng *engine.Engine) (any, error)
	reply chan result
}

type result struct {
	value any
	err   error
}

// Book is a single-writer embedding of engine.Engine. Every exported method
// submits a command to the actor's lane and blocks for its result, so two
// goroutines calling PlaceOrder concurrently are serialized exactly as if
// they had taken a mutex — except the lane also fans out reads (Snapshot)
// through the same ordering, so a reader never observes a torn mutation.
type Book struct {
	commands chan command
	tomb     tomb.Tomb
}

// New starts a Book actor over a fresh multi-instrument engine, pre-creating
// a book for each given ticker.
func New(tickers ...engine.Ticker) *Book {
	b := &Book{
		commands: make(chan command, commandQueueSize),
	}
	eng := engine.New(tickers...)
	b.tomb.Go(func() error {
		return b.run(eng)
	})
	return b
}

func (b *Book) run(eng *engine.Engine) error {
	log.Info().Msg("order book actor starting")
	for {
		select {
		case <-b.tomb.Dying():
			log.Info().Msg("order book actor stopping")
			return nil
		case cmd := <-b.commands:
			value, err := cmd.run(eng)
			if err != nil {
				log.Error().Err(err).Str("command", cmd.id.String()).Msg("command failed")
			}
			cmd.reply <- result{value: value, err: err}
		}
	}
}

// submit enqueues a command and waits for its result. It returns early if
// ctx is cancelled or the actor has been stopped, in either order.
func (b *Book) submit(ctx context.Context, run func(eng *engine.Engine) (any, error)) (any, error) {
	cmd := command{
		id:    uuid.New(),
		run:   run,
		reply: make(chan result, 1),
	}

	select {
	case <-b.tomb.Dying():
		return nil, ErrStopped
	default:
	}

	select {
	case b.commands <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.tomb.Dying():
		return nil, ErrStopped
	}

	select {
	case res := <-cmd.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.tomb.Dead():
		select {
		case res := <-cmd.reply:
			return res.value, res.err
		default:
			return nil, ErrStopped
		}
	}
}

// PlaceOrder submits an order against ticker's book through the matching
// engine, returning any trades produced.
func (b *Book) PlaceOrder(ctx context.Context, ticker engine.Ticker, order engine.Order) ([]common.Trade, error) {
	value, err := b.submit(ctx, func(eng *engine.Engine) (any, error) {
		return eng.PlaceOrder(ticker, order)
	})
	if err != nil {
		return nil, err
	}
	trades, _ := value.([]common.Trade)
	return trades, nil
}

// Cancel submits a cancel against an order resting in ticker's book.
func (b *Book) Cancel(ctx context.Context, ticker engine.Ticker, id common.OrderID) (engine.Order, error) {
	value, err := b.submit(ctx, func(eng *engine.Engine) (any, error) {
		return eng.Book(ticker).Cancel(id)
	})
	if err != nil {
		return engine.Order{}, err
	}
	order, _ := value.(engine.Order)
	return order, nil
}

// Update submits a quantity change against an order resting in ticker's
// book.
func (b *Book) Update(ctx context.Context, ticker engine.Ticker, id common.OrderID, newQuantity common.Quantity) error {
	_, err := b.submit(ctx, func(eng *engine.Engine) (any, error) {
		return nil, eng.Book(ticker).Update(id, newQuantity)
	})
	return err
}

// Snapshot is an immutable, point-in-time view of one instrument's book,
// fanned out to readers without handing them the live arena.
type Snapshot struct {
	Ticker engine.Ticker
	BidPx  common.Price
	BidSz  common.Quantity
	HasBid bool
	AskPx  common.Price
	AskSz  common.Quantity
	HasAsk bool
	Bids   []engine.LevelView
	Asks   []engine.LevelView
}

// Snapshot returns the top-of-book and depth ladder for ticker, serialized
// through the same lane as mutations so it can never race a concurrent
// PlaceOrder/Cancel/Update.
func (b *Book) Snapshot(ctx context.Context, ticker engine.Ticker, depth int) (Snapshot, error) {
	value, err := b.submit(ctx, func(eng *engine.Engine) (any, error) {
		book := eng.Book(ticker)
		bidPx, bidSz, hasBid := book.BestBid()
		askPx, askSz, hasAsk := book.BestAsk()
		bids, asks := book.Levels(depth)
		return Snapshot{
			Ticker: ticker,
			BidPx:  bidPx, BidSz: bidSz, HasBid: hasBid,
			AskPx: askPx, AskSz: askSz, HasAsk: hasAsk,
			Bids: bids, Asks: asks,
		}, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap, _ := value.(Snapshot)
	return snap, nil
}

// Stop signals the actor to exit and blocks until its goroutine has
// returned.
func (b *Book) Stop() error {
	b.tomb.Kill(nil)
	return b.tomb.Wait()
}
