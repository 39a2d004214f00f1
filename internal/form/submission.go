package form

import (
	"time"

	id "olea/pkg/domain"
)

// Submission statuses.
const (
	SubmissionDraft     = "draft"
	SubmissionSubmitted = "submitted"
	SubmissionProcessed = "processed"
)

// Submission is a saved client record with its bookkeeping. The record
// itself stays the flat 27-field shape.
type Submission struct {
	ID        id.FormID `json:"id"`
	FormType  string    `json:"form_type"`
	Status    string    `json:"status"`
	Record    Record    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
