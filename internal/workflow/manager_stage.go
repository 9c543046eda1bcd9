package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quill/internal/logging"
	"quill/internal/queue"
	"quill/internal/stage"
)

func (m *Manager) processItem(ctx context.Context, runLogger *slog.Logger, item *queue.Item) error {
	m.mu.RLock()
	stg, ok := m.stageByStart[item.Status]
	m.mu.RUnlock()
	if !ok {
		runLogger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, stg.name, item, requestID)
	stageLogger := logging.WithContext(stageCtx, runLogger)

	if err := m.transitionToProcessing(stageCtx, stg.processingStatus, item); err != nil {
		stageLogger.Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String(logging.FieldSource, item.SourceLabel()),
	)

	handler := stg.handler
	if err := handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, handler, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted {
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = "Completed"
		}
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String("next_status", string(item.Status)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, processing queue.Status, item *queue.Item) error {
	if processing == "" {
		return errors.New("processing status must not be empty")
	}

	now := time.Now().UTC()
	item.Status = processing
	if item.ProgressStage == "" {
		item.ProgressStage = deriveStageLabel(processing)
	}
	if item.ProgressMessage == "" {
		item.ProgressMessage = fmt.Sprintf("%s started", deriveStageLabel(processing))
	}
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.LastHeartbeat = &now
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	return nil
}
