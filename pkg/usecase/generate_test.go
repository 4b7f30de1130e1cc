package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/repository/memory"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
	"github.com/stylemail-dev/stylemail/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{`{"subject": "Test Subject", "body": "Test body."}`},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn        func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	vecs := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[0] = 1
		vecs[i] = vec
	}
	return vecs, nil
}

// countingLLMClient counts generation calls and answers with a fixed text
func countingLLMClient(response string, calls *atomic.Int32) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					calls.Add(1)
					return &gollem.Response{Texts: []string{response}}, nil
				},
			}, nil
		},
	}
}

func newTestUseCases(t *testing.T, repo interfaces.Repository, llm gollem.LLMClient, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	styleSvc, err := style.New(llm, repo.StyleSample())
	gt.NoError(t, err).Required()
	return usecase.New(repo, llm, styleSvc, opts...)
}

func testFacts() []model.NudgeFact {
	return []model.NudgeFact{
		{Title: "Declining Code Review Participation", Instructions: "Encourage more reviews", Metrics: "Threshold: 3"},
		{Title: "Low Sprint Velocity", Instructions: "No Instructions", Metrics: "Threshold: N/A"},
	}
}

func TestGeneratePlainEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds with empty style profile", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`{"subject": "Hello", "body": "Hi there."}`, &calls))

		artifact, err := uc.GeneratePlainEmail(ctx, "brand_new_user", "Hello", "Say hello warmly")
		gt.NoError(t, err).Required()
		gt.Value(t, artifact.Subject).Equal("Hello")
		gt.Value(t, artifact.Body).Equal("Hi there.")
		gt.Value(t, calls.Load()).Equal(int32(1))
	})

	t.Run("uses seeded style samples", func(t *testing.T) {
		repo := memory.New()
		llm := &mockLLMClient{}
		uc := newTestUseCases(t, repo, llm)

		gt.NoError(t, uc.SeedStyle(ctx, "user_123", []string{"Cheers, Sam"})).Required()

		artifact, err := uc.GeneratePlainEmail(ctx, "user_123", "Update", "Share the plan")
		gt.NoError(t, err).Required()
		gt.Value(t, artifact.Kind).Equal(types.TaskPlainEmail)
	})

	t.Run("rejects empty subject or prompt", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(t, repo, &mockLLMClient{})

		_, err := uc.GeneratePlainEmail(ctx, "user_123", "", "prompt")
		gt.Bool(t, errors.Is(err, types.ErrValidation)).True()

		_, err = uc.GeneratePlainEmail(ctx, "user_123", "subject", "  ")
		gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
	})

	t.Run("does not touch the artifact cache", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(t, repo, &mockLLMClient{})

		_, err := uc.GeneratePlainEmail(ctx, "user_123", "Subject", "prompt")
		gt.NoError(t, err).Required()

		_, err = repo.Artifact().Get(ctx, "user_123", types.TaskPlainEmail)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}

func TestGenerateNudgeSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("identical nudge set generates exactly once", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`{"summary": "Two active nudges."}`, &calls))

		first, err := uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", testFacts())
		gt.NoError(t, err).Required()
		gt.Value(t, first.Summary).Equal("Two active nudges.")

		second, err := uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", testFacts())
		gt.NoError(t, err).Required()
		gt.Value(t, second.Summary).Equal(first.Summary)
		gt.Value(t, calls.Load()).Equal(int32(1))
	})

	t.Run("changed nudge set invalidates and regenerates", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`{"summary": "A summary."}`, &calls))

		_, err := uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", testFacts())
		gt.NoError(t, err).Required()

		changed := []model.NudgeFact{{Title: "Meeting Overload", Instructions: "x", Metrics: "y"}}
		_, err = uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", changed)
		gt.NoError(t, err).Required()
		gt.Value(t, calls.Load()).Equal(int32(2))

		cached, err := repo.Artifact().Get(ctx, "emp_001", types.TaskNudgeSummary)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.NudgeSnippet).Equal("Meeting Overload")
	})

	t.Run("reordered titles are a different nudge set", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`{"summary": "A summary."}`, &calls))

		facts := testFacts()
		_, err := uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", facts)
		gt.NoError(t, err).Required()

		reversed := []model.NudgeFact{facts[1], facts[0]}
		_, err = uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", reversed)
		gt.NoError(t, err).Required()
		gt.Value(t, calls.Load()).Equal(int32(2))
	})

	t.Run("concurrent requests share one generation", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						calls.Add(1)
						time.Sleep(50 * time.Millisecond)
						return &gollem.Response{Texts: []string{`{"summary": "Shared."}`}}, nil
					},
				}, nil
			},
		}
		uc := newTestUseCases(t, repo, llm)

		const workers = 8
		var wg sync.WaitGroup
		results := make([]*model.Artifact, workers)
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", testFacts())
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			gt.NoError(t, errs[i]).Required()
			gt.Value(t, results[i].Summary).Equal("Shared.")
		}
		gt.Value(t, calls.Load()).Equal(int32(1))
	})

	t.Run("persist failure still returns the artifact", func(t *testing.T) {
		repo := &failingArtifactRepo{Memory: memory.New()}
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`{"summary": "Kept."}`, &calls))

		artifact, err := uc.GenerateNudgeSummary(ctx, "emp_001", "summarize", testFacts())
		gt.NoError(t, err).Required()
		gt.Value(t, artifact.Summary).Equal("Kept.")
	})
}

func TestGenerateNudgeEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh generation is recorded in email history", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(t, repo, &mockLLMClient{})

		artifact, err := uc.GenerateNudgeEmail(ctx, "user_123", "emp_001", "be supportive", testFacts())
		gt.NoError(t, err).Required()
		gt.Value(t, artifact.Subject).Equal("Test Subject")
		gt.Value(t, artifact.NudgeSnippet).Equal("Declining Code Review Participation, Low Sprint Velocity")

		// history append is asynchronous
		deadline := time.Now().Add(2 * time.Second)
		for {
			records, err := repo.EmailHistory().ListByEmployee(ctx, "emp_001")
			gt.NoError(t, err).Required()
			if len(records) == 1 {
				gt.Value(t, records[0].Subject).Equal("Test Subject")
				gt.Bool(t, records[0].Sent).False()
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("email history was not appended")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("cache hit does not duplicate history", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(t, repo, &mockLLMClient{})

		_, err := uc.GenerateNudgeEmail(ctx, "user_123", "emp_001", "be supportive", testFacts())
		gt.NoError(t, err).Required()
		_, err = uc.GenerateNudgeEmail(ctx, "user_123", "emp_001", "be supportive", testFacts())
		gt.NoError(t, err).Required()

		time.Sleep(100 * time.Millisecond)
		records, err := repo.EmailHistory().ListByEmployee(ctx, "emp_001")
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(1)
	})

	t.Run("rejects invalid identifiers", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(t, repo, &mockLLMClient{})

		_, err := uc.GenerateNudgeEmail(ctx, "", "emp_001", "p", testFacts())
		gt.Bool(t, errors.Is(err, types.ErrValidation)).True()

		_, err = uc.GenerateNudgeEmail(ctx, "user_123", "has space", "p", testFacts())
		gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
	})
}

func TestGenerationFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed JSON is not retried", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		uc := newTestUseCases(t, repo, countingLLMClient(`not json at all`, &calls))

		_, err := uc.GeneratePlainEmail(ctx, "user_123", "Subject", "prompt")
		gt.Bool(t, errors.Is(err, types.ErrGeneration)).True()
		gt.Value(t, calls.Load()).Equal(int32(1))
	})

	t.Run("transport failure is retried", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						if calls.Add(1) == 1 {
							return nil, goerr.New("connection reset")
						}
						return &gollem.Response{Texts: []string{`{"subject": "S", "body": "B"}`}}, nil
					},
				}, nil
			},
		}
		uc := newTestUseCases(t, repo, llm)

		artifact, err := uc.GeneratePlainEmail(ctx, "user_123", "Subject", "prompt")
		gt.NoError(t, err).Required()
		gt.Value(t, artifact.Subject).Equal("S")
		gt.Value(t, calls.Load()).Equal(int32(2))
	})

	t.Run("persistent transport failure surfaces as generation error", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						calls.Add(1)
						return nil, goerr.New("connection reset")
					},
				}, nil
			},
		}
		uc := newTestUseCases(t, repo, llm, usecase.WithGenerationTimeout(30*time.Second))

		_, err := uc.GeneratePlainEmail(ctx, "user_123", "Subject", "prompt")
		gt.Bool(t, errors.Is(err, types.ErrGeneration)).True()
		gt.Value(t, calls.Load()).Equal(int32(3))
	})
}

// failingArtifactRepo fails every artifact write
type failingArtifactRepo struct {
	*memory.Memory
}

func (r *failingArtifactRepo) Artifact() interfaces.ArtifactRepository {
	return &failingArtifacts{inner: r.Memory.Artifact()}
}

type failingArtifacts struct {
	inner interfaces.ArtifactRepository
}

func (a *failingArtifacts) Get(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind) (*model.Artifact, error) {
	return a.inner.Get(ctx, employeeID, kind)
}

func (a *failingArtifacts) Put(ctx context.Context, artifact *model.Artifact) error {
	return goerr.New("disk full")
}
