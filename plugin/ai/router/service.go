package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/alarmbot/plugin/ai/aitime"
)

// Service implements RouterService.
// Layer 1: keyword classification (RuleMatcher)
// Layer 2: time extraction for create and delete (aitime)
type Service struct {
	ruleMatcher *RuleMatcher
	timeService aitime.TimeService
}

// Config contains the configuration for the router service.
type Config struct {
	TimeService aitime.TimeService
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	timeService := cfg.TimeService
	if timeService == nil {
		timeService = aitime.NewService()
	}
	return &Service{
		ruleMatcher: NewRuleMatcher(),
		timeService: timeService,
	}
}

// Parse classifies input and extracts the alarm parameters it carries.
func (s *Service) Parse(ctx context.Context, input string, now time.Time) *Intent {
	start := time.Now()
	intent := s.parse(ctx, input, now)

	slog.Debug("intent parsed",
		"input", truncate(input, 50),
		"kind", intent.Kind,
		"latency_ms", time.Since(start).Milliseconds())
	return intent
}

func (s *Service) parse(ctx context.Context, input string, now time.Time) *Intent {
	intent := &Intent{Raw: input, Kind: s.ruleMatcher.Match(input)}

	switch intent.Kind {
	case IntentChitchat:
		intent.Topic, intent.Reply = ChitchatReply(input)

	case IntentClarify:
		intent.Reply = ClarifyReply

	case IntentCreate:
		res, err := s.timeService.Resolve(ctx, input, now)
		if err != nil {
			return &Intent{Kind: IntentParseFailure, Raw: input, Reply: CreateGuidance}
		}
		intent.Resolution = res

	case IntentDelete:
		target, err := s.timeService.ResolveDelete(ctx, input)
		if err != nil {
			return &Intent{Kind: IntentParseFailure, Raw: input, Reply: DeleteGuidance}
		}
		if target.All {
			intent.Kind = IntentDeleteAll
		} else {
			intent.Target = target.Time
		}
	}

	return intent
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Ensure Service implements RouterService
var _ RouterService = (*Service)(nil)
