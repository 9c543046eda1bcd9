package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quill/internal/logging"
	"quill/internal/queue"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	// Jobs left in a processing status belong to a previous run; no worker
	// holds them anymore.
	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		m.logger.Warn("failed to reset interrupted jobs", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("rolled interrupted jobs back for reprocessing", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.runnerLogger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, logger, m.reclaimStatuses()); err != nil {
			logger.Warn("reclaim stale processing failed; stuck jobs may remain", logging.Error(err))
		}

		item, err := m.nextItem(ctx)
		if err != nil {
			m.handleNextItemError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, logger, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) nextItem(ctx context.Context) (*queue.Item, error) {
	m.mu.RLock()
	order := m.statusOrder
	m.mu.RUnlock()
	if len(order) == 0 {
		return nil, nil
	}
	return m.store.NextForStatuses(ctx, order...)
}

func (m *Manager) reclaimStatuses() []queue.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processingStatuses
}

func (m *Manager) handleNextItemError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next queue job", logging.Error(err))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
