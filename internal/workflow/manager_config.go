package workflow

import "quill/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Nil handlers are skipped so tests can exercise a subset of the pipeline.
func (m *Manager) ConfigureStages(set StageSet) {
	stages := make([]pipelineStage, 0, 3)
	if set.Ingest != nil {
		stages = append(stages, pipelineStage{
			name:             "ingest",
			handler:          set.Ingest,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusFetching,
			doneStatus:       queue.StatusFetched,
		})
	}
	if set.Transcribe != nil {
		stages = append(stages, pipelineStage{
			name:             "transcribe",
			handler:          set.Transcribe,
			startStatus:      queue.StatusFetched,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
	}
	if set.Publish != nil {
		stages = append(stages, pipelineStage{
			name:             "publish",
			handler:          set.Publish,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	processing := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
		processing = append(processing, stg.processingStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.processingStatuses = processing
	m.mu.Unlock()
}
