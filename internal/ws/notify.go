package ws

import (
	"encoding/json"
	"time"

	"skill-intake/internal/domain/submission"

	"go.uber.org/zap"
)

const (
	EventSubmissionCreated = "submission_created"
	EventSubmissionMerged  = "submission_merged"
)

type SubmissionEvent struct {
	Type        string   `json:"type"`
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	AddedSkills []string `json:"added_skills"`
	Timestamp   string   `json:"timestamp"`
}

// NotifySubmission broadcasts a committed submission. outcome is "created"
// or "merged".
func (h *Hub) NotifySubmission(outcome string, s submission.Submission, added []string) {
	if h == nil {
		return
	}

	evtType := EventSubmissionCreated
	if outcome == "merged" {
		evtType = EventSubmissionMerged
	}

	evt := SubmissionEvent{
		Type:        evtType,
		UserID:      s.User.ID,
		Username:    s.User.Username,
		Email:       s.User.Email,
		Location:    s.User.Location,
		Skills:      nonNil(s.Skills),
		AddedSkills: nonNil(added),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("ws event encode failed", zap.Error(err))
		return
	}

	h.Broadcast(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
