package aitime

import (
	"context"
	"log/slog"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new time service.
func NewService() *Service {
	return &Service{logger: slog.Default()}
}

// Resolve extracts the alarm time from a create command.
// The reference time is used as "now" for relative and day-qualified rules.
func (s *Service) Resolve(_ context.Context, input string, reference time.Time) (*Resolution, error) {
	res, err := Resolve(input, reference)
	if err != nil {
		s.logger.Debug("time expression not recognized", "input", input)
		return nil, err
	}

	s.logger.Debug("time expression resolved",
		"rule", res.Rule,
		"clock", res.Clock(),
		"dated", res.Date != nil,
	)
	return res, nil
}

// ResolveDelete extracts the target of a delete command.
func (s *Service) ResolveDelete(_ context.Context, input string) (*DeleteTarget, error) {
	return ResolveDelete(input)
}

var _ TimeService = (*Service)(nil)
