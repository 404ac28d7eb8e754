package knowledge

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mindio-dev/mindio/pkg/embeddings"
)

// SourceConfig describes one named knowledge source on disk.
type SourceConfig struct {
	// Name identifies the source in stage configuration.
	Name string `yaml:"name"`

	// Description is surfaced in logs and diagnostics.
	Description string `yaml:"description"`

	// Path is the JSON file holding the source's documents.
	Path string `yaml:"path"`
}

// Federator groups a general store with named per-topic stores and
// merges their results. Sources that fail to load are logged and
// skipped; a federator with zero named sources still serves the
// general store.
type Federator struct {
	general  *Store
	named    map[string]*Store
	order    []string
	embedder embeddings.Service
	logger   *zap.Logger
}

// NewFederator creates a federator and loads every configured source.
// Sources load concurrently; a failed source never fails construction.
func NewFederator(ctx context.Context, embedder embeddings.Service, sources []SourceConfig, logger *zap.Logger) *Federator {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Federator{
		general:  NewStore(embedder),
		named:    make(map[string]*Store),
		embedder: embedder,
		logger:   logger,
	}

	stores := make([]*Store, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			docs, err := LoadFile(src.Name, src.Path)
			if err != nil {
				logger.Warn("skipping knowledge source",
					zap.String("source", src.Name),
					zap.String("path", src.Path),
					zap.Error(err))
				return nil
			}

			store := NewStore(embedder)
			for _, doc := range docs {
				if err := store.Add(gctx, doc); err != nil {
					logger.Warn("skipping document",
						zap.String("source", src.Name),
						zap.Error(err))
				}
			}
			stores[i] = store
			logger.Info("loaded knowledge source",
				zap.String("source", src.Name),
				zap.Int("documents", store.Len()))
			return nil
		})
	}
	// Handlers always return nil; Wait only orders completion.
	_ = g.Wait()

	for i, src := range sources {
		if stores[i] == nil {
			continue
		}
		if _, dup := f.named[src.Name]; dup {
			logger.Warn("duplicate knowledge source name", zap.String("source", src.Name))
			continue
		}
		f.named[src.Name] = stores[i]
		f.order = append(f.order, src.Name)
	}
	return f
}

// AddDocument adds a document to the general store.
func (f *Federator) AddDocument(ctx context.Context, doc Document) error {
	return f.general.Add(ctx, doc)
}

// Sources returns the loaded source names in configuration order.
func (f *Federator) Sources() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Search queries the general store for topK results and every named
// store for its single best match, then returns the topK highest
// scored results overall.
func (f *Federator) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}

	results := f.general.Search(ctx, query, topK)
	for _, name := range f.order {
		results = append(results, f.named[name].Search(ctx, query, 1)...)
	}
	return rank(results, topK)
}

// SearchIn queries only the listed named sources, each capped at one
// result, alongside the general store's best match. Unknown source
// names are ignored.
func (f *Federator) SearchIn(ctx context.Context, query string, names []string, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}

	results := f.general.Search(ctx, query, 1)
	for _, name := range names {
		store, ok := f.named[name]
		if !ok {
			continue
		}
		results = append(results, store.Search(ctx, query, 1)...)
	}
	return rank(results, topK)
}

func rank(results []Result, topK int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
