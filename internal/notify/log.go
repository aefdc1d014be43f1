package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes alerts to the application log. Used when no email
// credentials are configured.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(ctx context.Context, subject, message string) error {
	n.logger.Infow("feedback alert", "subject", subject, "message", message)
	return nil
}
