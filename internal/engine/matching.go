package engine

import (
	"fmt"

	"lob/internal/common"
)

// maxMatchIterations bounds the number of passive fills a single Process
// call may perform. It exists purely as defence-in-depth against an
// invariant violation turning into an infinite loop (§4.6 "Safety"); no
// legitimate workload should ever approach it.
const maxMatchIterations = 1_000_000

// MatchingEngine is a stateless consumer of OrderBook: given an incoming
// order, it walks the opposing side in price-time priority, emits trades,
// and leaves any residual resting.
type MatchingEngine struct{}

// NewMatchingEngine returns a matching engine. It carries no state of its
// own — every call operates entirely through the book passed in.
func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{}
}

// Process matches incoming against the book's opposing side, in price-time
// priority, then rests any residual quantity at incoming's limit price.
// Trades already emitted when an error occurs remain valid — matching does
// not roll back, per §4.6 "Failure".
func (m *MatchingEngine) Process(book *OrderBook, incoming Order) ([]common.Trade, error) {
	var trades []common.Trade
	opposing := incoming.Side.Opposite()

	for i := 0; incoming.RemainingQuantity > 0; i++ {
		if i >= maxMatchIterations {
			return trades, treeErrorf("matching exceeded %d iterations for order %d", maxMatchIterations, incoming.ID)
		}

		levelH := book.bestHandle(opposing)
		if levelH == noHandle {
			break
		}
		bestPrice := book.levels[levelH].level.Price
		if !marketable(incoming.Side, incoming.Price, bestPrice) {
			break
		}

		passive := book.headOrderAt(levelH)
		if passive == nil {
			return trades, levelErrorf("level %d at %d has no head order", levelH, bestPrice)
		}

		execQty := incoming.RemainingQuantity
		if passive.RemainingQuantity < execQty {
			execQty = passive.RemainingQuantity
		}

		trades = append(trades, common.Trade{
			AggressorOrderID: incoming.ID,
			PassiveOrderID:   passive.ID,
			Price:            bestPrice,
			Quantity:         execQty,
			Timestamp:        book.CurrentTime(),
			AggressorSide:    incoming.Side,
		})

		incoming.Fill(execQty, book.CurrentTime())

		remainder := passive.RemainingQuantity - execQty
		if err := book.Process(Order{ID: passive.ID, Side: passive.Side, Price: passive.Price, RemainingQuantity: remainder}); err != nil {
			return trades, err
		}
	}

	if incoming.RemainingQuantity > 0 {
		if err := book.Add(incoming); err != nil {
			return trades, err
		}
	}

	return trades, nil
}

// marketable reports whether incoming's limit price crosses the opposing
// best price: for a buy, incoming >= opposing best; for a sell, incoming <=
// opposing best.
func marketable(side common.Side, incomingPrice, opposingBest common.Price) bool {
	if side == common.Buy {
		return incomingPrice >= opposingBest
	}
	return incomingPrice <= opposingBest
}

func levelErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{common.ErrLevelNotFound}, args...)...)
}
