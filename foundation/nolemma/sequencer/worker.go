package sequencer

import (
	"sync"
	"time"

	"github.com/ardanlabs/nolemma/foundation/nolemma/chain"
)

// Worker drives the periodic sealing tick in a background goroutine,
// pushing each sealed block onto Blocks and any fatal sealing error onto
// Fatal. The sequencer process exits non-zero if Fatal ever fires.
type Worker struct {
	engine *Engine
	ticker *time.Ticker
	shut   chan struct{}
	wg     sync.WaitGroup

	Blocks chan chain.Block
	Fatal  chan error
}

// Run starts the periodic sealer against engine and returns immediately;
// callers read Blocks for sealed blocks and Fatal for the one error that
// terminates the sequencer.
func Run(engine *Engine) *Worker {
	w := &Worker{
		engine: engine,
		ticker: time.NewTicker(engine.sealPeriod),
		shut:   make(chan struct{}),
		Blocks: make(chan chain.Block, 16),
		Fatal:  make(chan error, 1),
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()

	return w
}

// Shutdown stops the ticker and waits for the sealing goroutine to exit.
// Any transactions still pending in the mempool at shutdown are
// discarded, matching the spec's ephemeral-state default.
func (w *Worker) Shutdown() {
	w.ticker.Stop()
	close(w.shut)
	w.wg.Wait()
}

func (w *Worker) run() {
	for {
		select {
		case <-w.ticker.C:
			block, err := w.engine.Seal()
			if err != nil {
				w.engine.evHandler("sequencer: worker: FATAL: %s", err)
				select {
				case w.Fatal <- err:
				default:
				}
				return
			}

			select {
			case w.Blocks <- block:
			default:
				w.engine.evHandler("sequencer: worker: WARNING: blocks channel full, dropping broadcast for block[%d]", block.Header.Header.Number)
			}

		case <-w.shut:
			return
		}
	}
}
