package menu

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
)

const MaxMenuBytes = 2 << 20

// LoadError reports a menu that could not be fetched or decoded.
// It is surfaced once at startup; the service keeps running with an empty catalog.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load menu from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads a menu document from a file path or an HTTP(S) URL.
type Loader struct {
	source     string
	unit       PriceUnit
	httpClient *http.Client
	logger     apt.Logger
}

// NewLoader creates a Loader for source.
func NewLoader(source string, unit PriceUnit, logger apt.Logger) *Loader {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if unit == "" {
		unit = MinorUnits
	}
	return &Loader{
		source: source,
		unit:   unit,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Load fetches and normalises the menu.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	data, err := l.read(ctx)
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}

	catalog, err := Decode(data, l.unit)
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}

	l.logger.Info("menu loaded", "source", l.source, "categories", len(catalog.Categories), "items", catalog.Len())
	return catalog, nil
}

// LoadOrEmpty loads the menu and falls back to an empty catalog on failure.
// The returned error is the LoadError, for the caller to surface once.
func (l *Loader) LoadOrEmpty(ctx context.Context) (*Catalog, error) {
	catalog, err := l.Load(ctx)
	if err != nil {
		l.logger.Error("menu unavailable, serving empty catalog", "error", err)
		return EmptyCatalog(), err
	}
	return catalog, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.source == "" {
		return nil, fmt.Errorf("no menu source configured")
	}
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		return l.fetch(ctx)
	}

	f, err := os.Open(l.source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, MaxMenuBytes))
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu source returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, MaxMenuBytes))
}
