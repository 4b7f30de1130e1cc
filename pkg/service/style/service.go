package style

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// Match is one retrieved style sample with its similarity to the query.
type Match struct {
	Text  string
	Score float64
	Seq   int
}

// Service maintains per-user writing style profiles: seeding raw text
// samples with embeddings and retrieving the samples most similar to a
// query text.
type Service struct {
	llmClient gollem.LLMClient
	repo      interfaces.StyleSampleRepository
}

// New creates a style profile service backed by the given LLM client
// for embeddings and repository for persistence.
func New(llmClient gollem.LLMClient, repo interfaces.StyleSampleRepository) (*Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if repo == nil {
		return nil, goerr.New("style sample repository is required")
	}

	return &Service{
		llmClient: llmClient,
		repo:      repo,
	}, nil
}

// Seed embeds the given texts and appends them to the user's style
// profile. Seeding is additive; re-seeding the same texts appends new
// samples rather than replacing existing ones. An embedding failure
// aborts the whole call and nothing is persisted.
func (s *Service) Seed(ctx context.Context, userID types.UserID, texts []string) ([]*model.StyleSample, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid user ID", goerr.V("userID", userID))
	}
	if len(texts) == 0 {
		return nil, goerr.Wrap(types.ErrValidation, "no style samples given", goerr.V("userID", userID))
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, goerr.Wrap(types.ErrValidation, "empty style sample", goerr.V("userID", userID), goerr.V("index", i))
		}
	}

	embeddings, err := s.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbeddingService, "failed to embed style samples", goerr.V("userID", userID), goerr.V("cause", err.Error()))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.Wrap(types.ErrEmbeddingService, "embedding count mismatch", goerr.V("want", len(texts)), goerr.V("got", len(embeddings)))
	}

	samples := make([]*model.StyleSample, len(texts))
	for i, text := range texts {
		samples[i] = &model.StyleSample{
			UserID:    userID,
			Text:      text,
			Embedding: toFloat32(embeddings[i]),
		}
	}

	saved, err := s.repo.Append(ctx, userID, samples)
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to save style samples", goerr.V("userID", userID), goerr.V("cause", err.Error()))
	}

	return saved, nil
}

// Retrieve embeds the query and returns up to k of the user's samples
// ranked by cosine similarity, highest first. Ties keep insertion
// order. A user with no profile yields an empty slice, not an error.
func (s *Service) Retrieve(ctx context.Context, userID types.UserID, query string, k int) ([]Match, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid user ID", goerr.V("userID", userID))
	}
	if k <= 0 {
		return []Match{}, nil
	}

	samples, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to list style samples", goerr.V("userID", userID))
	}
	if len(samples) == 0 {
		return []Match{}, nil
	}

	embeddings, err := s.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{query})
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbeddingService, "failed to embed query", goerr.V("userID", userID), goerr.V("cause", err.Error()))
	}
	if len(embeddings) == 0 {
		return nil, goerr.Wrap(types.ErrEmbeddingService, "no embedding returned for query")
	}
	queryVec := toFloat32(embeddings[0])

	matches := make([]Match, 0, len(samples))
	for _, sample := range samples {
		matches = append(matches, Match{
			Text:  sample.Text,
			Score: cosineSimilarity(queryVec, sample.Embedding),
			Seq:   sample.Seq,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Seq < matches[j].Seq
	})

	if k > len(matches) {
		k = len(matches)
	}

	return matches[:k], nil
}

func toFloat32(v []float64) []float32 {
	result := make([]float32, len(v))
	for i, f := range v {
		result[i] = float32(f)
	}
	return result
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
