package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func newWorkflowState(item string) *WorkflowState {
	return &WorkflowState{
		ID:        uuid.New().String(),
		Item:      item,
		StartTime: time.Now(),
		Status:    StatusPending,
		History:   make([]WorkflowEvent, 0),
	}
}

// AddEvent adds an event to the history in a thread-safe manner. Missing IDs
// and timestamps are filled in.
func (s *WorkflowState) AddEvent(event WorkflowEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.Lock()
	defer s.Unlock()
	s.History = append(s.History, event)
}

// advance moves the item to status after stage completed.
func (s *WorkflowState) advance(stage Stage, status ItemStatus, message string, data map[string]interface{}) {
	s.Lock()
	s.Status = status
	if status == StatusCleanedUp {
		s.EndTime = time.Now()
	}
	s.Unlock()

	if data == nil {
		data = map[string]interface{}{}
	}
	data["status"] = status
	s.AddEvent(WorkflowEvent{
		Stage:   stage,
		Type:    "completed",
		Message: message,
		Data:    data,
	})
}

// fail marks the item as failed in stage.
func (s *WorkflowState) fail(stage Stage, err error) {
	s.Lock()
	s.Status = StatusFailed
	s.FailedStage = stage
	s.Err = err
	s.EndTime = time.Now()
	s.Unlock()

	s.AddEvent(WorkflowEvent{
		Stage:   stage,
		Type:    "failed",
		Message: fmt.Sprintf("Failed at %s: %v", stage, err),
		Data: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

// GetStatus gets the item status in a thread-safe manner
func (s *WorkflowState) GetStatus() ItemStatus {
	s.RLock()
	defer s.RUnlock()
	return s.Status
}

// Statuses returns the status reached after each completed stage, in order.
func (s *WorkflowState) Statuses() []ItemStatus {
	s.RLock()
	defer s.RUnlock()
	var out []ItemStatus
	for _, e := range s.History {
		if st, ok := e.Data["status"].(ItemStatus); ok {
			out = append(out, st)
		}
	}
	return out
}
