package rulebased

import (
	"context"
	"regexp"

	"github.com/torvik/intent-cascade/internal/config"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/service/params"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

// ProviderName identifies this recognizer in cascade configuration.
const ProviderName = "rule_based"

// word builds a case-insensitive pattern bounded at token edges. RE2's \b is
// ASCII-only and never fires between Cyrillic letters, so boundaries are
// spelled out as non-letter, non-digit context.
func word(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + alternatives + `)(?:$|[^\p{L}\p{N}])`)
}

// intentRules are the fixed bilingual pattern tables. Each intent carries
// several phrasing variants; matching any of them is a hit.
var intentRules = map[string][]*regexp.Regexp{
	"greeting.hello": {
		word(`привет|здравствуй(?:те)?|приветствую`),
		word(`hello|hi|hey|greetings`),
		word(`доброе утро|добрый день|добрый вечер`),
		word(`good morning|good afternoon|good evening`),
	},
	"greeting.goodbye": {
		word(`пока|до свидания|прощай|бывай`),
		word(`goodbye|bye|farewell|see you`),
		word(`до встречи|всего доброго`),
	},
	"timer.set": {
		word(`(?:поставь|установи|засеки)\s+(?:таймер|время)`),
		word(`(?:set|start)\s+(?:a\s+)?(?:timer|alarm)`),
		regexp.MustCompile(`(?i)таймер\s+на\s+\d+`),
		regexp.MustCompile(`(?i)напомни\s+через\s+\d+`),
	},
	"timer.cancel": {
		word(`(?:отмени|убери|стоп)\s+(?:таймер|время)`),
		word(`(?:cancel|stop|remove)\s+(?:the\s+)?(?:timer|alarm)`),
	},
	"timer.list": {
		word(`(?:покажи|список)\s+таймер(?:ы|ов)?`),
		word(`(?:list|show)\s+timers?`),
		word(`мои таймеры`),
	},
	"conversation.start": {
		word(`поболтаем|поговорим|давай поговорим`),
		word(`let'?s talk|let'?s chat`),
	},
	"conversation.reference": {
		word(`справка|что такое|кто такой`),
		word(`расскажи о|объясни`),
		word(`what is|who is|tell me about`),
	},
	"system.status": {
		word(`статус|состояние|как дела`),
		word(`status|how are you`),
	},
	"system.help": {
		word(`помощь|что умеешь`),
		word(`help|commands|what can you do`),
	},
	"datetime.current_time": {
		word(`сколько времени|который час`),
		word(`what time|current time`),
	},
	"datetime.current_date": {
		word(`какое число|какая дата|какой день`),
		word(`what date|today'?s date`),
	},
}

// Recognizer classifies text against the fixed rule tables. It serves as the
// simple, dependable member of the cascade behind the hybrid matcher.
type Recognizer struct {
	cfg       config.RuleBasedConfig
	extractor *params.Extractor
	logger    *zap.Logger
}

func NewRecognizer(cfg config.RuleBasedConfig, extractor *params.Extractor, logger *zap.Logger) *Recognizer {
	logger.Info("Rule-based recognizer initialized", zap.Int("intents", len(intentRules)))
	return &Recognizer{cfg: cfg, extractor: extractor, logger: logger}
}

func (r *Recognizer) ProviderName() string {
	return ProviderName
}

func (r *Recognizer) IsAvailable(_ context.Context) bool {
	return true
}

// Recognize scores each intent by the fraction of its phrasing variants that
// match and returns the best, or nil when nothing matches.
func (r *Recognizer) Recognize(_ context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error) {
	normalized := util.NormalizeForMatch(text)
	if normalized == "" {
		return nil, nil
	}

	bestIntent, bestConfidence := "", 0.0
	for intentName, rules := range intentRules {
		matches := 0
		for _, rule := range rules {
			if rule.MatchString(normalized) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		ratio := float64(matches) / float64(len(rules))
		confidence := util.Clamp01(r.cfg.DefaultConfidence * (0.9 + 0.1*ratio))
		if confidence > bestConfidence ||
			(confidence == bestConfidence && intentName < bestIntent) {
			bestIntent, bestConfidence = intentName, confidence
		}
	}

	if bestIntent == "" || bestConfidence < r.cfg.ConfidenceThreshold {
		return nil, nil
	}

	sessionID := ""
	if convCtx != nil {
		sessionID = convCtx.SessionID
	}
	intent := domain.NewIntent(bestIntent, text, sessionID, bestConfidence)
	intent.Entities[domain.EntityProviderMetadata] = map[string]any{
		"method":     "rule_match",
		"confidence": bestConfidence,
		"provider":   ProviderName,
	}
	return intent, nil
}

// ExtractParameters delegates to the shared type-driven extractor.
func (r *Recognizer) ExtractParameters(_ context.Context, text, intentName string, specs []domain.ParameterSpec) (map[string]any, error) {
	return r.extractor.Extract(text, intentName, specs)
}

// RecognizeWithParameters returns the recognized intent as-is: the rule
// tables carry no parameter specifications of their own.
func (r *Recognizer) RecognizeWithParameters(ctx context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error) {
	return r.Recognize(ctx, text, convCtx)
}
