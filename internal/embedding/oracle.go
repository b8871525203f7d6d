// Package embedding provides the similarity oracle over profile embedding vectors.
package embedding

import (
	"context"
	"errors"
	"math"

	"github.com/festy23/teammatch/pkg/apperror"
)

// DefaultScope is the collection holding every indexed profile.
const DefaultScope = "profiles"

// ErrUnavailable is returned when the oracle cannot serve a call.
var ErrUnavailable = apperror.New(apperror.UpstreamUnavailable, "EMBEDDING_UNAVAILABLE", "embedding oracle is unavailable")

// ErrDimensionMismatch is returned when two vectors cannot be compared.
var ErrDimensionMismatch = errors.New("embedding vectors have different dimensions")

// Oracle scores and searches embedding vectors. Callers must treat every
// method as optionally unavailable.
type Oracle interface {
	// Similarity returns the similarity of two vectors in [0,1].
	Similarity(ctx context.Context, a, b []float32) (float64, error)

	// FindSimilar returns up to count user ids ranked by similarity to vector.
	FindSimilar(ctx context.Context, vector []float32, scope string, count int) ([]string, error)

	// Index stores or replaces the vector of userID in the default scope.
	Index(ctx context.Context, userID string, vector []float32) error

	// Remove drops userID from the default scope.
	Remove(ctx context.Context, userID string) error
}

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// Zero vectors have similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim)), nil
}

// Disabled is an Oracle that is always unavailable.
type Disabled struct{}

func (Disabled) Similarity(context.Context, []float32, []float32) (float64, error) {
	return 0, ErrUnavailable
}

func (Disabled) FindSimilar(context.Context, []float32, string, int) ([]string, error) {
	return nil, ErrUnavailable
}

func (Disabled) Index(context.Context, string, []float32) error { return ErrUnavailable }

func (Disabled) Remove(context.Context, string) error { return ErrUnavailable }
