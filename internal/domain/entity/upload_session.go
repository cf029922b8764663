package entity

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	UploadStatusSigned     UploadStatus = "signed"
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
	UploadStatusAbandoned  UploadStatus = "abandoned"
)

// UploadSession binds what was signed to where the client puts the bytes. It
// lives only in the session store and is discarded once completed or expired.
type UploadSession struct {
	ID             uuid.UUID    `json:"id"`
	Filename       string       `json:"filename"`
	ContentType    string       `json:"content_type"`
	Size           int64        `json:"size"`
	Kind           string       `json:"kind"`
	EntitySlug     string       `json:"entity_slug"`
	DestinationKey string       `json:"destination_key"`
	Status         UploadStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ExpiresAt      time.Time    `json:"expires_at"`
}

type NewUploadSessionParams struct {
	ID             uuid.UUID
	Filename       string
	ContentType    string
	Size           int64
	Kind           string
	EntitySlug     string
	DestinationKey string
	TTL            time.Duration
}

func NewUploadSession(p NewUploadSessionParams) *UploadSession {
	now := time.Now().UTC()
	return &UploadSession{
		ID:             p.ID,
		Filename:       p.Filename,
		ContentType:    p.ContentType,
		Size:           p.Size,
		Kind:           p.Kind,
		EntitySlug:     p.EntitySlug,
		DestinationKey: p.DestinationKey,
		Status:         UploadStatusSigned,
		CreatedAt:      now,
		ExpiresAt:      now.Add(p.TTL),
	}
}

func (s *UploadSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Transition moves the session forward; terminal states never change again.
func (s *UploadSession) Transition(to UploadStatus) bool {
	if !s.canTransition(to) {
		return false
	}
	s.Status = to
	return true
}

func (s *UploadSession) canTransition(to UploadStatus) bool {
	switch s.Status {
	case UploadStatusSigned:
		return to == UploadStatusUploaded || to == UploadStatusAbandoned
	case UploadStatusUploaded:
		return to == UploadStatusProcessing || to == UploadStatusAbandoned
	case UploadStatusProcessing:
		return to == UploadStatusCompleted || to == UploadStatusFailed
	default:
		return false
	}
}
