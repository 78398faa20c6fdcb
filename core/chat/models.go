package chat

import (
	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/session"
)

type (
	Message struct {
		ID         string `json:"id"`
		SenderID   string `json:"sender_id"`
		SenderName string `json:"sender_name,omitempty"`
		ReceiverID string `json:"receiver_id"`
		Content    string `json:"content"`
		ClassID    string `json:"class_id,omitempty"`
		CreatedAt  string `json:"created_at,omitempty"`
	}

	Conversation struct {
		User        session.Profile `json:"user"`
		LastMessage string          `json:"last_message"`
		LastTime    string          `json:"last_time"`
	}

	// Filter selects a direct conversation (ReceiverID) or a class group chat (ClassID).
	Filter struct {
		ReceiverID string
		ClassID    string
	}
)

// NewMessage is a message to send.
type NewMessage struct {
	ReceiverID string  `json:"receiver_id" validate:"required"`
	Content    string  `json:"content" validate:"required,notblank,max=5000"`
	ClassID    *string `json:"class_id"`
}

func (nm *NewMessage) Validate() error {
	nm.ReceiverID = core.CleanString(nm.ReceiverID)
	nm.Content = core.CleanString(nm.Content)
	if nm.ClassID != nil {
		if id := core.CleanString(*nm.ClassID); id != "" {
			nm.ClassID = &id
		} else {
			nm.ClassID = nil
		}
	}
	return core.Validate.Struct(nm)
}
