package domain

import "time"

type NoticeType string

const (
	NoticeBroadcast NoticeType = "broadcast"
	NoticePrivate   NoticeType = "private"
)

// TargetAll addresses every parent in the sender's program.
const TargetAll = "all"

type Notice struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Program     string     `json:"program"`
	Sender      string     `json:"sender"`
	Date        string     `json:"date"`
	Type        NoticeType `json:"type"`
	RecipientID *string    `json:"recipient_id"`
}

// VisibleTo reports whether the notice is addressed to the given parent.
func (n Notice) VisibleTo(parentID string) bool {
	if n.Type == NoticeBroadcast {
		return true
	}
	return n.RecipientID != nil && *n.RecipientID == parentID
}

// Receipt is the record of the last simulated payment.
type Receipt struct {
	Reference string    `json:"reference"`
	ParentID  string    `json:"parent_id"`
	Program   string    `json:"program"`
	Amount    int       `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Expiry    time.Time `json:"expiry"`
}

type SubscriptionStatus struct {
	ParentID    string     `json:"parent_id"`
	Active      bool       `json:"active"`
	Expiry      *time.Time `json:"expiry,omitempty"`
	LastReceipt *Receipt   `json:"last_receipt,omitempty"`
}
