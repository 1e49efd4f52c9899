package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/torvik/intent-cascade/internal/config"
	"github.com/torvik/intent-cascade/internal/constants"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

// FallbackProviderName tags intents produced by the cascade itself.
const FallbackProviderName = "fallback"

// CascadeCoordinator tries recognizers in configured order until one returns
// a result above its threshold, with per-attempt error isolation, an optional
// recognition cache and a soft deadline over the whole attempt sequence.
type CascadeCoordinator struct {
	recognizers map[string]Recognizer
	cfg         config.CascadeConfig
	cache       *RecognitionCache
	logger      *zap.Logger
}

// NewCascadeCoordinator wires the active recognizer set. Ids in the cascade
// order without a matching recognizer are dropped with a warning, so one
// recognizer failing to initialize never takes down the rest of the cascade.
func NewCascadeCoordinator(cfg config.CascadeConfig, recognizers map[string]Recognizer, logger *zap.Logger) *CascadeCoordinator {
	active := make([]string, 0, len(cfg.Order))
	for _, id := range cfg.Order {
		if _, ok := recognizers[id]; !ok {
			logger.Warn("Recognizer missing from active set, excluded from cascade", zap.String("recognizer", id))
			continue
		}
		active = append(active, id)
	}
	cfg.Order = active

	var cache *RecognitionCache
	if cfg.CacheEnabled {
		cache = NewRecognitionCache(cfg.CacheTTL, cfg.CacheMaxEntries, constants.CacheLimits.RecognitionEvictBatch)
	}

	logger.Info("Cascade coordinator initialized",
		zap.Strings("order", cfg.Order),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	return &CascadeCoordinator{
		recognizers: recognizers,
		cfg:         cfg,
		cache:       cache,
		logger:      logger,
	}
}

// Recognize classifies text. It is total: it never returns nil and never
// propagates a recognizer failure; when nothing is confident it returns the
// fallback intent. The cascade deadline is cooperative — it is checked
// between attempts, so a recognizer that blocks internally can overrun it.
func (cc *CascadeCoordinator) Recognize(ctx context.Context, text string, convCtx *domain.ConversationContext) *domain.Intent {
	if convCtx == nil {
		convCtx = &domain.ConversationContext{}
	}

	cacheKey := cc.cacheKey(text, convCtx)
	if cc.cache != nil {
		if cached, ok := cc.cache.Get(cacheKey); ok {
			cc.logger.Debug("Recognition cache hit",
				zap.String("intent", cached.Name),
				zap.String("session_id", convCtx.SessionID),
			)
			return cached
		}
	}

	start := time.Now()
	attempts := 0

	for _, id := range cc.cfg.Order {
		if attempts >= cc.cfg.MaxAttempts {
			break
		}
		if time.Since(start) > cc.cfg.Timeout {
			cc.logger.Warn("Cascade deadline exceeded, falling back",
				zap.Duration("elapsed", time.Since(start)),
				zap.Duration("timeout", cc.cfg.Timeout),
				zap.Int("attempts", attempts),
			)
			break
		}

		recognizer := cc.recognizers[id]
		if !recognizer.IsAvailable(ctx) {
			cc.logger.Debug("Recognizer unavailable, skipping", zap.String("recognizer", id))
			continue
		}

		attempts++
		intent, err := cc.attempt(ctx, recognizer, text, convCtx)
		if err != nil {
			cc.logger.Warn("Recognizer attempt failed, continuing cascade",
				zap.String("recognizer", id),
				zap.Error(err),
			)
			continue
		}
		if intent == nil {
			continue
		}

		threshold := cc.thresholdFor(id)
		if intent.Confidence < threshold {
			cc.logger.Debug("Result below threshold, continuing cascade",
				zap.String("recognizer", id),
				zap.String("intent", intent.Name),
				zap.Float64("confidence", intent.Confidence),
				zap.Float64("threshold", threshold),
			)
			continue
		}

		cc.stamp(intent, id, attempts)
		if cc.cache != nil {
			cc.cache.Set(cacheKey, intent)
		}

		cc.logger.Info("Intent recognized",
			zap.String("recognizer", id),
			zap.String("intent", intent.Name),
			zap.Float64("confidence", intent.Confidence),
			zap.Int("attempts", attempts),
		)
		return intent
	}

	fallback := domain.NewFallbackIntent(text, convCtx.SessionID)
	cc.stamp(fallback, FallbackProviderName, attempts)
	cc.logger.Info("No recognizer confident, using fallback intent",
		zap.String("text", util.TruncateString(text, 60)),
		zap.Int("attempts", attempts),
	)
	return fallback
}

// attempt runs one recognizer inside an isolation boundary: panics become
// errors so a single bad recognizer cannot abort the whole pipeline.
func (cc *CascadeCoordinator) attempt(ctx context.Context, recognizer Recognizer, text string, convCtx *domain.ConversationContext) (intent *domain.Intent, err error) {
	defer func() {
		if r := recover(); r != nil {
			intent = nil
			err = fmt.Errorf("recognizer panic: %v", r)
		}
	}()
	return recognizer.RecognizeWithParameters(ctx, text, convCtx)
}

func (cc *CascadeCoordinator) thresholdFor(id string) float64 {
	if override, ok := cc.cfg.ProviderThresholds[id]; ok {
		return override
	}
	return cc.cfg.ConfidenceThreshold
}

func (cc *CascadeCoordinator) stamp(intent *domain.Intent, provider string, attempts int) {
	if intent.Entities == nil {
		intent.Entities = make(map[string]any)
	}
	intent.Entities[domain.EntityRecognitionProvider] = provider
	intent.Entities[domain.EntityCascadeAttempts] = attempts
}

func (cc *CascadeCoordinator) cacheKey(text string, convCtx *domain.ConversationContext) string {
	hash := xxhash.Sum64String(util.NormalizeForMatch(text))
	return fmt.Sprintf("recog:%s:%s:%s:%016x", convCtx.SessionID, convCtx.ClientID, convCtx.Language, hash)
}

// ActiveRecognizers returns the cascade order actually in service.
func (cc *CascadeCoordinator) ActiveRecognizers() []string {
	order := make([]string, len(cc.cfg.Order))
	copy(order, cc.cfg.Order)
	return order
}
