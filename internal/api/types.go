package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	SourceKind     string         `json:"sourceKind"`
	SourcePath     string         `json:"sourcePath,omitempty"`
	SourceURL      string         `json:"sourceUrl,omitempty"`
	DeclaredFormat string         `json:"declaredFormat,omitempty"`
	Status         string         `json:"status"`
	Progress       QueueProgress  `json:"progress"`
	ErrorMessage   string         `json:"errorMessage"`
	CreatedAt      string         `json:"createdAt,omitempty"`
	UpdatedAt      string         `json:"updatedAt,omitempty"`
	MediaPath      string         `json:"mediaPath,omitempty"`
	CaptionPath    string         `json:"captionPath,omitempty"`
	Language       string         `json:"language,omitempty"`
	Preview        string         `json:"preview,omitempty"`
	Artifacts      *ArtifactPaths `json:"artifacts,omitempty"`
	Provenance     *Provenance    `json:"provenance,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// ArtifactPaths records where each rendered artifact landed. The JSON keys
// match the format keys accepted by the artifact download endpoint.
type ArtifactPaths struct {
	Text string `json:"txt,omitempty"`
	SRT  string `json:"srt,omitempty"`
	VTT  string `json:"vtt,omitempty"`
	HTML string `json:"html,omitempty"`
}

// Provenance carries source metadata surfaced in rendered artifacts.
type Provenance struct {
	URL             string  `json:"url,omitempty"`
	Author          string  `json:"author,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queueDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	LogPath      string             `json:"logPath,omitempty"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// Job source kinds accepted by SubmitJobRequest.
const (
	JobKindFile       = "file"
	JobKindURL        = "url"
	JobKindTranscript = "transcript"
)

// SubmitJobRequest is the payload for enqueueing work over the API. Kind
// selects the source: "file" requires Path, "url" requires URL, and
// "transcript" requires Text or Path plus an optional declared Format.
type SubmitJobRequest struct {
	Kind   string `json:"kind"`
	Path   string `json:"path,omitempty"`
	URL    string `json:"url,omitempty"`
	Text   string `json:"text,omitempty"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
}

// QueueActionResponse reports how many rows a queue mutation touched.
type QueueActionResponse struct {
	Updated int64 `json:"updated"`
}

// QueueRemoveResponse reports whether a removal matched an item.
type QueueRemoveResponse struct {
	Removed bool `json:"removed"`
}

// LogTailResponse returns the trailing lines of the daemon log file.
type LogTailResponse struct {
	Path  string   `json:"path,omitempty"`
	Lines []string `json:"lines"`
}

// NotifyTestResponse reports the outcome of a test notification request.
type NotifyTestResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports daemon API liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
