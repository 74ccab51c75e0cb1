package engine

import "lob/internal/common"

// Engine routes orders to a per-instrument OrderBook, creating a book on
// first use of a ticker. This is the multi-instrument layer the teacher's
// Engine provided (there, keyed by AssetType); the matching semantics
// themselves are entirely in MatchingEngine/OrderBook, which stay
// single-instrument per §1's scope.
type Engine struct {
	books   map[Ticker]*OrderBook
	matcher *MatchingEngine
}

// New returns an engine with a book pre-created for each given ticker.
// Tickers not listed here are created lazily on first PlaceOrder/Book call.
func New(tickers ...Ticker) *Engine {
	e := &Engine{
		books:   make(map[Ticker]*OrderBook, len(tickers)),
		matcher: NewMatchingEngine(),
	}
	for _, t := range tickers {
		e.books[t] = NewOrderBook()
	}
	return e
}

// Book returns the order book for a ticker, creating it if this is the
// first reference to it.
func (e *Engine) Book(ticker Ticker) *OrderBook {
	if book, ok := e.books[ticker]; ok {
		return book
	}
	book := NewOrderBook()
	e.books[ticker] = book
	return book
}

// PlaceOrder submits an order against the named instrument's book via the
// matching engine, returning any trades produced.
func (e *Engine) PlaceOrder(ticker Ticker, order Order) ([]common.Trade, error) {
	return e.matcher.Process(e.Book(ticker), order)
}
