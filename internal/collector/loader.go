package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/core"
)

const (
	defaultCacheDir = ".data_cache"
	defaultCacheTTL = 24 * time.Hour
)

// LoaderOptions configure the cached loader.
type LoaderOptions struct {
	CacheDir string        // file cache directory, defaults to .data_cache
	CacheTTL time.Duration // cache entry lifetime, defaults to 24h
	Logger   *zap.Logger
}

// Loader loads price series through a provider with two cache tiers in
// front: an in-memory TTL cache for repeated loads inside one process, and
// a JSON file cache keyed by (symbol, range, interval) surviving restarts.
type Loader struct {
	provider Provider
	memory   *gocache.Cache
	cacheDir string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewLoader creates a loader over the given provider.
func NewLoader(provider Provider, opts LoaderOptions) (*Loader, error) {
	if opts.CacheDir == "" {
		opts.CacheDir = defaultCacheDir
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Loader{
		provider: provider,
		memory:   gocache.New(opts.CacheTTL, opts.CacheTTL),
		cacheDir: opts.CacheDir,
		ttl:      opts.CacheTTL,
		logger:   opts.Logger,
	}, nil
}

// Load returns the series for the symbol and range, from cache when fresh.
func (l *Loader) Load(ctx context.Context, symbol string, start, end time.Time, interval string) (core.Series, error) {
	key := l.cacheKey(symbol, start, end, interval)

	if cached, ok := l.memory.Get(key); ok {
		return core.NewSeries(cached.([]core.Bar)), nil
	}

	if bars, ok := l.loadFromFile(key); ok {
		l.memory.Set(key, bars, gocache.DefaultExpiration)
		l.logger.Debug("loaded series from file cache",
			zap.String("symbol", symbol), zap.Int("bars", len(bars)))
		return core.NewSeries(bars), nil
	}

	l.logger.Info("fetching series from provider",
		zap.String("provider", l.provider.Name()),
		zap.String("symbol", symbol))
	bars, err := l.provider.FetchHistory(ctx, symbol, start, end, interval)
	if err != nil {
		return core.Series{}, err
	}

	l.memory.Set(key, bars, gocache.DefaultExpiration)
	if err := l.saveToFile(key, bars); err != nil {
		// a broken file cache never fails the load
		l.logger.Warn("writing file cache failed", zap.Error(err))
	}

	return core.NewSeries(bars), nil
}

// LoadMultiple loads several symbols over the same range. Symbols that fail
// to load are reported in the error map instead of aborting the batch.
func (l *Loader) LoadMultiple(ctx context.Context, symbols []string, start, end time.Time, interval string) (map[string]core.Series, map[string]error) {
	results := make(map[string]core.Series, len(symbols))
	failures := make(map[string]error)
	for _, symbol := range symbols {
		series, err := l.Load(ctx, symbol, start, end, interval)
		if err != nil {
			failures[symbol] = err
			continue
		}
		results[symbol] = series
	}
	return results, failures
}

// ClearCache removes cached entries; with an empty symbol it clears
// everything.
func (l *Loader) ClearCache(symbol string) error {
	l.memory.Flush()

	pattern := "*.json"
	if symbol != "" {
		pattern = sanitizeSymbol(symbol) + "_*.json"
	}
	matches, err := filepath.Glob(filepath.Join(l.cacheDir, pattern))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) cacheKey(symbol string, start, end time.Time, interval string) string {
	return fmt.Sprintf("%s_%s_%s_%s",
		sanitizeSymbol(symbol),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		interval)
}

func sanitizeSymbol(symbol string) string {
	replacer := strings.NewReplacer("/", "_", "^", "_")
	return replacer.Replace(symbol)
}

func (l *Loader) cachePath(key string) string {
	return filepath.Join(l.cacheDir, key+".json")
}

// loadFromFile reads a cache file if it exists and has not expired.
func (l *Loader) loadFromFile(key string) ([]core.Bar, bool) {
	path := l.cachePath(key)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > l.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var bars []core.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false
	}
	return bars, true
}

func (l *Loader) saveToFile(key string, bars []core.Bar) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return err
	}
	return os.WriteFile(l.cachePath(key), data, 0o644)
}
