package notifier

import (
	"context"
	"log/slog"

	"github.com/strefex-app/walletd/internal/domain"
)

// LogSender writes verification codes to the log instead of dispatching
// them to an email or SMS provider. Stands in until a real transport is
// wired up; the destination is masked so codes can ship to production
// logs without leaking contact details.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Deliver logs the verification code.
func (s *LogSender) Deliver(ctx context.Context, channel domain.Channel, destination, code string) error {
	masked := destination
	switch channel {
	case domain.ChannelEmail:
		masked = domain.MaskEmail(destination)
	case domain.ChannelPhone:
		masked = domain.MaskPhone(destination)
	}

	s.logger.Info("VERIFICATION CODE",
		slog.String("channel", string(channel)),
		slog.String("destination", masked),
		slog.String("code", code))

	return nil
}
