// Package scraper supplies the raw wishlist markup, either fetched over HTTP or
// read from a local file.
package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/aluiziolira/wishlist-watch/config"
)

// Source returns the raw markup of the wishlist.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Describe() string
}

// Fetcher downloads the wishlist page with a single colly visit. Failures are
// returned to the caller without retrying.
type Fetcher struct {
	url       string
	collector *colly.Collector
	metrics   *Metrics
	logger    *zap.Logger
}

// NewFetcher builds a fetcher for the configured URL.
func NewFetcher(cfg *config.Config, metrics *Metrics, logger *zap.Logger) (*Fetcher, error) {
	if err := cfg.RequireURL(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.MaxBodySize = 0
	collector.IgnoreRobotsTxt = !cfg.RespectRobots
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{
		url:       cfg.URL,
		collector: collector,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Describe returns the URL being fetched.
func (f *Fetcher) Describe() string {
	return f.url
}

// Fetch issues the GET request and returns the response body as text.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	collector := f.collector.Clone()
	var (
		body     string
		fetchErr error
		start    time.Time
	)

	collector.OnRequest(func(r *colly.Request) {
		start = time.Now()
		f.metrics.IncRequest("started")
		f.logger.Info("fetching wishlist", zap.String("url", r.URL.String()))
	})

	collector.OnResponse(func(r *colly.Response) {
		f.metrics.IncRequest("completed")
		f.metrics.ObserveDuration(time.Since(start))
		body = string(r.Body)
		f.logger.Debug("wishlist fetched",
			zap.Int("status", r.StatusCode),
			zap.Int("bytes", len(r.Body)),
		)
	})

	collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(err, statusCode)
		category := errorTypeLabel(fetchErr)
		f.metrics.IncError(category)
		f.logger.Error("request error",
			zap.String("url", f.url),
			zap.Int("status", statusCode),
			zap.String("category", category),
			zap.Error(err),
		)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(f.url)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return "", fetchErr
		}
		if err != nil {
			return "", fmt.Errorf("visit %s: %w", f.url, err)
		}
		return body, nil
	}
}

// FileSource reads the wishlist markup from a local file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// Describe returns the file path.
func (s *FileSource) Describe() string {
	return s.path
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	s.logger.Info("reading wishlist file", zap.String("path", s.path))
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}
	return string(data), nil
}
