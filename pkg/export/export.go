package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vstream/pkg/render"
	"github.com/vango-dev/vstream/pkg/vdom"
)

// Page is one document to pre-render.
type Page struct {
	// Name is the page name. The document is stored under Name + ".html".
	Name string

	// Build returns the page tree.
	Build func() (*vdom.VNode, error)
}

// Result describes an exported document.
type Result struct {
	Name     string
	Key      string
	Bytes    int
	Chunks   int
	Duration time.Duration
}

// Config configures an Exporter.
type Config struct {
	// Concurrency bounds how many pages render at once.
	// Default: 4.
	Concurrency int

	// Logger is used for export progress.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Exporter renders pages to completion and stores the documents a
// browser would end up showing after every patch was applied.
type Exporter struct {
	renderer    *render.Renderer
	store       Store
	concurrency int
	logger      *slog.Logger
}

// NewExporter creates an Exporter writing to store.
func NewExporter(renderer *render.Renderer, store Store, config Config) *Exporter {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Exporter{
		renderer:    renderer,
		store:       store,
		concurrency: config.Concurrency,
		logger:      config.Logger.With("component", "export"),
	}
}

// Export renders every page concurrently. The first failure cancels the
// remaining renders and is returned. Results are in the order of pages.
func (e *Exporter) Export(ctx context.Context, pages []Page) ([]Result, error) {
	results := make([]Result, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			res, err := e.exportPage(ctx, page)
			if err != nil {
				return fmt.Errorf("export %s: %w", page.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) exportPage(ctx context.Context, page Page) (Result, error) {
	start := time.Now()
	tree, err := page.Build()
	if err != nil {
		return Result{}, err
	}
	doc, chunks, err := Resolve(ctx, e.renderer, tree)
	if err != nil {
		return Result{}, err
	}

	key := page.Name + ".html"
	if err := e.store.Put(ctx, key, "text/html; charset=utf-8", bytes.NewReader([]byte(doc)), int64(len(doc))); err != nil {
		return Result{}, err
	}

	res := Result{
		Name:     page.Name,
		Key:      key,
		Bytes:    len(doc),
		Chunks:   len(chunks),
		Duration: time.Since(start),
	}
	e.logger.Info("page exported", "page", page.Name, "key", key, "bytes", res.Bytes, "chunks", res.Chunks)
	return res, nil
}

// Resolve renders tree to completion and returns the reconstructed
// document together with the chunks it was assembled from.
func Resolve(ctx context.Context, renderer *render.Renderer, tree *vdom.VNode) (string, []render.Chunk, error) {
	stream, err := renderer.Render(ctx, tree)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	chunks, err := stream.Collect(ctx)
	if err != nil {
		return "", nil, err
	}
	doc, err := render.Reconstruct(chunks)
	if err != nil {
		return "", nil, err
	}
	return doc, chunks, nil
}
