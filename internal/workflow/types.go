// Package workflow sequences the show notes pipeline for one item and drives
// batches of items through it.
package workflow

import (
	"sync"
	"time"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
	"github.com/ajcwebdev/autoshow-sub002/internal/services/llm"
)

// Stage names a pipeline step. It is what StageError reports.
type Stage string

const (
	StageMetadata      Stage = "metadata"
	StageAudio         Stage = "audio"
	StageTranscription Stage = "transcription"
	StageNormalize     Stage = "normalize"
	StagePrompt        Stage = "prompt"
	StageLLM           Stage = "llm"
	StageAssembly      Stage = "assembly"
	StageCleanup       Stage = "cleanup"
)

// ItemStatus is the state of one item in the pipeline state machine.
type ItemStatus string

const (
	StatusPending          ItemStatus = "pending"
	StatusMetadataResolved ItemStatus = "metadata_resolved"
	StatusAudioAcquired    ItemStatus = "audio_acquired"
	StatusTranscribed      ItemStatus = "transcribed"
	StatusNormalized       ItemStatus = "normalized"
	StatusPromptBuilt      ItemStatus = "prompt_built"
	StatusLLMGenerated     ItemStatus = "llm_generated"
	StatusAssembled        ItemStatus = "assembled"
	StatusCleanedUp        ItemStatus = "cleaned_up"
	StatusFailed           ItemStatus = "failed"
)

// Source is one unit of input for RunItem. Exactly one field is set.
type Source struct {
	// URL is a page yt-dlp can resolve, such as a video.
	URL string
	// Path is a local audio or video file.
	Path string
	// Item is already resolved, as for RSS entries.
	Item *metadata.MediaItem
}

func (s Source) label() string {
	switch {
	case s.Item != nil:
		return s.Item.Label()
	case s.Path != "":
		return s.Path
	default:
		return s.URL
	}
}

// WorkflowState records how one item moved through the pipeline.
type WorkflowState struct {
	sync.RWMutex // Protects all fields below

	ID          string
	Item        string
	Stem        string
	StartTime   time.Time
	EndTime     time.Time
	Status      ItemStatus
	FailedStage Stage
	Err         error
	History     []WorkflowEvent
}

// WorkflowEvent represents an event that occurred during item processing
type WorkflowEvent struct {
	ID        string
	Timestamp time.Time
	Stage     Stage
	Type      string
	Message   string
	Data      map[string]interface{}
}

// RunResult is the outcome of a successful RunItem.
type RunResult struct {
	Item metadata.MediaItem `json:"item"`
	Stem string             `json:"stem"`
	// Output is the final artifact: the prompt file or the show notes file.
	Output     string          `json:"output"`
	Completion *llm.Completion `json:"completion,omitempty"`
	State      *WorkflowState  `json:"-"`
}

// ItemFailure describes an item a batch driver gave up on.
type ItemFailure struct {
	Item  string `json:"item"`
	Stage Stage  `json:"stage,omitempty"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

// BatchResult summarizes a run over one or more items. Batch success does not
// depend on individual items succeeding.
type BatchResult struct {
	Succeeded []RunResult   `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
	// InfoPath is set by info runs, which write metadata instead of processing.
	InfoPath string `json:"infoPath,omitempty"`
}
