package service

import (
	"context"

	"github.com/torvik/intent-cascade/internal/domain"
)

// Recognizer is the capability the cascade consumes uniformly. Any
// implementation — keyword/fuzzy hybrid, rule-based regex, or an external
// semantic recognizer — slots into the cascade without coordinator changes.
//
// Recognize returns (nil, nil) when the recognizer has no confident match;
// errors are reserved for genuine failures.
type Recognizer interface {
	Recognize(ctx context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error)
	ExtractParameters(ctx context.Context, text, intentName string, specs []domain.ParameterSpec) (map[string]any, error)
	RecognizeWithParameters(ctx context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error)
	IsAvailable(ctx context.Context) bool
	ProviderName() string
}
