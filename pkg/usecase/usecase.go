package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
	"golang.org/x/sync/singleflight"
)

const (
	defaultGenerationTimeout = 60 * time.Second
	defaultPromptBudget      = 12000
	defaultRetrieveCount     = 5
)

// UseCases orchestrates the generation pipeline: style retrieval,
// prompt composition, LLM calls and the per-employee artifact cache.
type UseCases struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	styleSvc  *style.Service

	genTimeout    time.Duration
	promptBudget  int
	retrieveCount int

	flight singleflight.Group
}

type Option func(*UseCases)

// WithGenerationTimeout sets the per-call timeout for LLM generation
func WithGenerationTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.genTimeout = d
	}
}

// WithPromptBudget sets the maximum composed prompt size in characters
func WithPromptBudget(n int) Option {
	return func(uc *UseCases) {
		uc.promptBudget = n
	}
}

// WithRetrieveCount sets how many style samples are retrieved per
// generation request.
func WithRetrieveCount(k int) Option {
	return func(uc *UseCases) {
		uc.retrieveCount = k
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, styleSvc *style.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		llmClient: llmClient,
		styleSvc:  styleSvc,

		genTimeout:    defaultGenerationTimeout,
		promptBudget:  defaultPromptBudget,
		retrieveCount: defaultRetrieveCount,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
