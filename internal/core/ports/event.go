package ports

import (
	"context"
	"time"
)

const (
	EventEnrollmentCreated = "enrollment.created"
	EventNoticePosted      = "notice.posted"
)

// OutboxEvent is written in the same transaction as the record it describes
// and later relayed to the broker.
type OutboxEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollmentCreatedEvent struct {
	EnrollmentID string `json:"enrollment_id"`
	ParentName   string `json:"parent_name"`
	ChildName    string `json:"child_name"`
	Email        string `json:"email"`
	Program      string `json:"program"`
}

type NoticePostedEvent struct {
	NoticeID    string  `json:"notice_id"`
	Program     string  `json:"program"`
	Type        string  `json:"type"`
	RecipientID *string `json:"recipient_id"`
	Sender      string  `json:"sender"`
}

type EventPublisher interface {
	Publish(ctx context.Context, evt OutboxEvent) error
}
