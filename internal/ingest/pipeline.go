package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/metrics"
	"github.com/rickgao/nse-data/internal/model"
)

// SymbolResolver bulk-creates and resolves instrument ids for symbols.
type SymbolResolver interface {
	EnsureSymbols(ctx context.Context, symbols []string) (map[string]uuid.UUID, error)
}

// TickStore persists tick rows and maintains latest pointers.
type TickStore interface {
	InsertTicks(ctx context.Context, rows []model.Tick) error
	RefreshLatestPointers(ctx context.Context, instrumentIDs []uuid.UUID) error
}

// Source yields one batch of ingestion work. Load runs on the batch's
// worker, so parse failures are per-batch failures.
type Source interface {
	Name() string
	Load(ctx context.Context) (Batch, error)
}

// Result is the outcome of one batch.
type Result struct {
	Source string
	Rows   int
	Err    error // classified fault.Batch on failure
}

// Config holds pipeline settings.
type Config struct {
	Workers int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Pipeline runs batches through parallel workers with no shared mutable
// state between them.
type Pipeline struct {
	cfg     Config
	catalog SymbolResolver
	ticks   TickStore
	logger  *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config, catalog SymbolResolver, ticks TickStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Pipeline{cfg: cfg, catalog: catalog, ticks: ticks, logger: logger}
}

// Run processes all sources and returns one result per source, in input
// order. A failed batch is reported in its result; siblings are unaffected.
func (p *Pipeline) Run(ctx context.Context, sources []Source) []Result {
	results := make([]Result, len(sources))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.runBatch(ctx, sources[i])
			}
		}()
	}

	for i := range sources {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = Result{Source: sources[i].Name(), Err: fault.Batch(sources[i].Name(), ctx.Err())}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// runBatch processes a single batch end to end.
func (p *Pipeline) runBatch(ctx context.Context, src Source) Result {
	name := src.Name()
	start := time.Now()

	rows, err := p.processBatch(ctx, src)
	if err != nil {
		p.logger.Error("batch failed", "batch", name, "error", err)
		metrics.BatchesFailed.Inc()
		return Result{Source: name, Err: fault.Batch(name, err)}
	}

	p.logger.Info("batch ingested",
		"batch", name,
		"rows", rows,
		"duration", time.Since(start),
	)
	metrics.BatchesCompleted.Inc()
	metrics.TicksIngested.Add(float64(rows))
	return Result{Source: name, Rows: rows}
}

func (p *Pipeline) processBatch(ctx context.Context, src Source) (int, error) {
	batch, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(batch.Rows) == 0 {
		return 0, nil
	}

	// Resolve every distinct symbol in one round trip.
	seen := make(map[string]struct{})
	var symbols []string
	for _, r := range batch.Rows {
		if _, ok := seen[r.Symbol]; !ok {
			seen[r.Symbol] = struct{}{}
			symbols = append(symbols, r.Symbol)
		}
	}

	ids, err := p.catalog.EnsureSymbols(ctx, symbols)
	if err != nil {
		return 0, fmt.Errorf("ensure symbols: %w", err)
	}

	ticks := make([]model.Tick, 0, len(batch.Rows))
	touched := make([]uuid.UUID, 0, len(symbols))
	for _, s := range symbols {
		touched = append(touched, ids[s])
	}
	for _, r := range batch.Rows {
		ticks = append(ticks, model.Tick{
			InstrumentID:    ids[r.Symbol],
			Timestamp:       r.Timestamp,
			LastTradedPrice: r.LastTradedPrice,
			BuyPrice:        r.BuyPrice,
			BuyQty:          r.BuyQty,
			SellPrice:       r.SellPrice,
			SellQty:         r.SellQty,
			RemainingQty:    r.RemainingQty,
			OpenInterest:    r.OpenInterest,
		})
	}

	if err := p.ticks.InsertTicks(ctx, ticks); err != nil {
		return 0, fmt.Errorf("insert ticks: %w", err)
	}

	// Pointers update after all chunks commit, once per touched instrument.
	if err := p.ticks.RefreshLatestPointers(ctx, touched); err != nil {
		return 0, fmt.Errorf("refresh latest pointers: %w", err)
	}

	return len(ticks), nil
}
