// Package collab contains HTTP clients for the external collaborators the
// engine consumes: file upload, submission registration, overview query and
// remote configuration. The engine owns no persistence of its own; every
// durable state lives behind these services.
package collab

import (
	"fmt"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
)

// Options configures every collaborator client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// RegisterRequest is the payload sent to the registration collaborator.
type RegisterRequest struct {
	Category     catalog.Category `json:"category"`
	SubType      catalog.SubType  `json:"subType,omitempty"`
	ContentLink  string           `json:"contentLink,omitempty"`
	EvidenceURLs []string         `json:"evidenceUrls"`
	BrowseNum    *int             `json:"browseNum,omitempty"`
	LikeNum      *int             `json:"likeNum,omitempty"`
	CommentNum   *int             `json:"commentNum,omitempty"`
	ShareNum     *int             `json:"shareNum,omitempty"`
}

// UpdateOriginalRequest is the partial patch sent for an original-record edit.
// Nil fields are omitted and left unchanged server-side.
type UpdateOriginalRequest struct {
	ContentLink *string `json:"contentLink,omitempty"`
	BrowseNum   *int    `json:"browseNum,omitempty"`
	LikeNum     *int    `json:"likeNum,omitempty"`
	CommentNum  *int    `json:"commentNum,omitempty"`
	ShareNum    *int    `json:"shareNum,omitempty"`
	EvidenceURL *string `json:"evidenceUrl,omitempty"`
}

// RemoteError is a structured rejection from a collaborator. The message is
// surfaced to the member verbatim, so it must stay human-readable.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("collaborator returned HTTP %d", e.StatusCode)
}

// errorEnvelope matches the collaborators' error payload shape.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// message returns whichever error field the collaborator populated.
func (e errorEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
