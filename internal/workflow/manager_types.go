package workflow

import (
	"quill/internal/queue"
	"quill/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Ingest     stage.Handler
	Transcribe stage.Handler
	Publish    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}
