// Package app runs one wishlist check: obtain the page, extract the books,
// compare them with the previous snapshot, print the report and save the new
// snapshot.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/aluiziolira/wishlist-watch/config"
	"github.com/aluiziolira/wishlist-watch/diff"
	"github.com/aluiziolira/wishlist-watch/extractor"
	"github.com/aluiziolira/wishlist-watch/models"
	"github.com/aluiziolira/wishlist-watch/report"
	"github.com/aluiziolira/wishlist-watch/scraper"
	"github.com/aluiziolira/wishlist-watch/store"
)

// App wires the run components together.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	out       io.Writer
	extractor *extractor.Extractor
	snapshot  *store.Snapshot
	Metrics   *scraper.Metrics
}

// New builds an App writing its report to out.
func New(cfg *config.Config, logger *zap.Logger, out io.Writer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sel, err := cfg.SelectorExprs().Compile()
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("selectors: %w", err)}
	}
	return &App{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		extractor: extractor.New(sel, cfg.AuthorPrefix),
		snapshot:  store.NewSnapshot(cfg.SnapshotFile, logger),
		Metrics:   scraper.NewMetrics(),
	}, nil
}

// SourceFor returns a file source when path is set, and the HTTP fetcher for
// the configured URL otherwise.
func (a *App) SourceFor(path string) (scraper.Source, error) {
	if path != "" {
		return scraper.NewFileSource(path, a.logger), nil
	}
	f, err := scraper.NewFetcher(a.cfg, a.Metrics, a.logger)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return f, nil
}

// Run performs one check against src. With saveRaw the markup is also written
// to the configured raw file before it is processed.
func (a *App) Run(ctx context.Context, src scraper.Source, saveRaw bool) (*models.RunResult, error) {
	result, err := a.run(ctx, src, saveRaw)
	a.Metrics.SetSuccess(err == nil)
	if err != nil {
		a.Metrics.IncError(ErrorLabel(err))
	}
	a.writeMetrics()
	return result, err
}

func (a *App) run(ctx context.Context, src scraper.Source, saveRaw bool) (*models.RunResult, error) {
	result := &models.RunResult{
		Source:    src.Describe(),
		StartTime: time.Now(),
	}

	markup, err := src.Fetch(ctx)
	if err != nil {
		return nil, &ProviderError{Source: src.Describe(), Err: err}
	}

	if saveRaw {
		if err := store.SaveRaw(a.cfg.RawFile, markup); err != nil {
			return nil, &RawSaveError{Path: a.cfg.RawFile, Err: err}
		}
		a.logger.Info("raw markup saved", zap.String("path", a.cfg.RawFile))
	}

	books, err := a.extractor.Extract(markup)
	if err != nil {
		return nil, fmt.Errorf("extract wishlist from %s: %w", src.Describe(), err)
	}
	a.logger.Debug("books extracted", zap.Int("count", len(books)))

	previous := a.snapshot.Load()
	comparison := diff.Compare(previous, books, a.logger)

	result.Books = books
	result.Changes = comparison.Changes
	result.DuplicateTitles = comparison.DuplicateTitles
	for _, book := range books {
		if book.HasDiscount() {
			result.DiscountCount++
		}
	}
	a.Metrics.ObserveRun(len(books), result.DiscountCount, len(result.Changes), len(result.DuplicateTitles))

	if err := report.Write(a.out, result.Changes, books); err != nil {
		return result, &ReportError{Err: err}
	}

	if err := a.snapshot.Save(books); err != nil {
		return result, &SnapshotSaveError{Path: a.snapshot.Path(), Err: err}
	}

	if a.cfg.ExportCSV != "" {
		if err := store.ExportCSV(a.cfg.ExportCSV, books); err != nil {
			a.logger.Warn("csv export failed", zap.String("path", a.cfg.ExportCSV), zap.Error(err))
		}
	}

	result.EndTime = time.Now()
	a.logger.Info("run complete",
		zap.String("source", result.Source),
		zap.Int("books", len(books)),
		zap.Int("previous", len(previous)),
		zap.Int("price_changes", len(result.Changes)),
		zap.Int("discounted", result.DiscountCount),
		zap.Duration("duration", result.EndTime.Sub(result.StartTime)),
	)
	return result, nil
}

func (a *App) writeMetrics() {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("metrics export failed", zap.String("path", a.cfg.MetricsFile), zap.Error(err))
	}
}
