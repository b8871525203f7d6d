package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("teammatch.embedding")

// Chromem is an in-memory Oracle backed by chromem-go collections, one per scope.
// Index and Remove write to the index scope; FindSimilar reads any scope.
type Chromem struct {
	db     *chromem.DB
	scope  string
	logger *zap.SugaredLogger

	mu sync.Mutex
}

// NewChromem creates an empty in-memory oracle indexing into DefaultScope.
func NewChromem(logger *zap.SugaredLogger) *Chromem {
	return &Chromem{db: chromem.NewDB(), scope: DefaultScope, logger: logger}
}

// InScope makes Index and Remove use scope. An empty scope means DefaultScope.
func (c *Chromem) InScope(scope string) *Chromem {
	if scope == "" {
		scope = DefaultScope
	}
	c.scope = scope
	return c
}

func (c *Chromem) collection(scope string) (*chromem.Collection, error) {
	if scope == "" {
		scope = DefaultScope
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Vectors are always supplied, so no embedding function is needed.
	col, err := c.db.GetOrCreateCollection(scope, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", scope, err)
	}
	return col, nil
}

// Similarity implements Oracle.
func (c *Chromem) Similarity(_ context.Context, a, b []float32) (float64, error) {
	return Cosine(a, b)
}

// FindSimilar implements Oracle.
func (c *Chromem) FindSimilar(ctx context.Context, vector []float32, scope string, count int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Chromem.FindSimilar")
	defer span.End()
	span.SetAttributes(attribute.String("scope", scope), attribute.Int("count", count))

	if count <= 0 || len(vector) == 0 {
		return nil, nil
	}

	col, err := c.collection(scope)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// chromem requires nResults <= document count
	n := col.Count()
	if n == 0 {
		return nil, nil
	}
	if count > n {
		count = n
	}

	results, err := col.QueryEmbedding(ctx, vector, count, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying scope %s: %w", scope, err)
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	span.SetAttributes(attribute.Int("results", len(ids)))
	return ids, nil
}

// Index implements Oracle.
func (c *Chromem) Index(ctx context.Context, userID string, vector []float32) error {
	if len(vector) == 0 {
		return c.Remove(ctx, userID)
	}
	col, err := c.collection(c.scope)
	if err != nil {
		return err
	}
	doc := chromem.Document{
		ID:        userID,
		Metadata:  map[string]string{"user_id": userID},
		Embedding: append([]float32(nil), vector...),
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("indexing profile %s: %w", userID, err)
	}
	c.logger.Debugw("Indexed profile embedding", "user_id", userID, "scope", c.scope, "dimensions", len(vector))
	return nil
}

// Remove implements Oracle.
func (c *Chromem) Remove(ctx context.Context, userID string) error {
	col, err := c.collection(c.scope)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, userID); err != nil {
		return fmt.Errorf("removing profile %s: %w", userID, err)
	}
	return nil
}
