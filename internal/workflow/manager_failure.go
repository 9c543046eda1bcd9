package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/queue"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))

	message := classifyStageFailure(stageName, stageErr)
	item.SetFailed(message)

	logger.Error("stage failed",
		logging.String("resolved_status", string(queue.StatusFailed)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	m.notifyStageError(ctx, stageName, item, stageErr)
}

// classifyStageFailure derives the operator-facing failure message. The
// underlying technical message is reported verbatim.
func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	if message := strings.TrimSpace(stageErr.Error()); message != "" {
		return message
	}
	return fmt.Sprintf("%s failed", stageName)
}

func (m *Manager) notifyStageError(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger)
	err := m.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
		"context": fmt.Sprintf("%s (job #%d)", stageName, item.ID),
		"error":   stageErr.Error(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send error notification")
		} else {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}
