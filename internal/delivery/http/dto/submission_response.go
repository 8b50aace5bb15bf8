package dto

import "skill-intake/internal/domain/submission"

type SubmitFormRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

type SubmissionResponse struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

// MergeResponse is returned when a submission adds skills to a known user.
type MergeResponse struct {
	SubmissionResponse
	AddedSkills []string `json:"added_skills"`
}

func NewSubmissionResponse(s submission.Submission) SubmissionResponse {
	skills := s.Skills
	if skills == nil {
		skills = []string{}
	}
	return SubmissionResponse{
		UserID:   s.User.ID,
		Username: s.User.Username,
		Email:    s.User.Email,
		Location: s.User.Location,
		Skills:   skills,
	}
}

func NewSubmissionListResponse(items []submission.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewSubmissionResponse(it))
	}
	return out
}

func (r SubmitFormRequest) ToInput() submission.Input {
	return submission.Input{
		Username: r.Username,
		Email:    r.Email,
		Location: r.Location,
		Skills:   r.Skills,
	}
}
