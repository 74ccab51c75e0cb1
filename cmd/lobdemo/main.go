// Command lobdemo drives a single-instrument book through a scripted
// sequence of orders and prints the resulting top-of-book, depth ladder, and
// trades, the way the teacher's cmd/server exercises its engine behind a
// listener — except this harness talks to the book directly instead of over
// the wire.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lob/internal/actor"
	"lob/internal/common"
	"lob/internal/engine"
)

const ticker engine.Ticker = "DEMO"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runID := uuid.New()
	log.Info().Str("run_id", runID.String()).Msg("starting order book demo")

	book := actor.New(ticker)
	defer book.Stop()

	seed := []engine.Order{
		{ID: 1, Side: common.Buy, Price: 4950, RemainingQuantity: 100},
		{ID: 2, Side: common.Buy, Price: 4940, RemainingQuantity: 200},
		{ID: 3, Side: common.Sell, Price: 5050, RemainingQuantity: 150},
		{ID: 4, Side: common.Sell, Price: 5060, RemainingQuantity: 100},
	}
	for _, order := range seed {
		if _, err := book.PlaceOrder(ctx, ticker, order); err != nil {
			log.Fatal().Err(err).Uint64("order_id", uint64(order.ID)).Msg("seed order rejected")
		}
	}

	printTopOfBook(ctx, book)
	printDepth(ctx, book, 5)

	aggressor := engine.Order{ID: 5, Side: common.Buy, Price: 5055, RemainingQuantity: 225}
	trades, err := book.PlaceOrder(ctx, ticker, aggressor)
	if err != nil {
		log.Fatal().Err(err).Msg("aggressor order rejected")
	}

	fmt.Printf("\naggressor order %d (%s %d @ %d) produced %d trade(s):\n",
		aggressor.ID, aggressor.Side, aggressor.RemainingQuantity, aggressor.Price, len(trades))
	for _, trade := range trades {
		fmt.Printf("  %s\n", trade)
	}

	printTopOfBook(ctx, book)
	printDepth(ctx, book, 5)

	log.Info().Str("run_id", runID.String()).Msg("demo complete")
}

func printTopOfBook(ctx context.Context, book *actor.Book) {
	snap, err := book.Snapshot(ctx, ticker, 0)
	if err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		return
	}

	switch {
	case snap.HasBid && snap.HasAsk:
		fmt.Printf("best bid %d x %d | best ask %d x %d | spread %d\n",
			snap.BidPx, snap.BidSz, snap.AskPx, snap.AskSz, snap.AskPx-snap.BidPx)
	case snap.HasBid:
		fmt.Printf("best bid %d x %d | no asks resting\n", snap.BidPx, snap.BidSz)
	case snap.HasAsk:
		fmt.Printf("no bids resting | best ask %d x %d\n", snap.AskPx, snap.AskSz)
	default:
		fmt.Println("book is empty")
	}
}

func printDepth(ctx context.Context, book *actor.Book, depth int) {
	snap, err := book.Snapshot(ctx, ticker, depth)
	if err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		return
	}

	fmt.Println("bids:")
	for _, lvl := range snap.Bids {
		fmt.Printf("  %6d x %d\n", lvl.Price, lvl.Size)
	}
	fmt.Println("asks:")
	for _, lvl := range snap.Asks {
		fmt.Printf("  %6d x %d\n", lvl.Price, lvl.Size)
	}
}
