package chat

import (
	"context"
	"net/url"

	"github.com/trezcool/prodigy/core"
)

// Service talks to the chat endpoints.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// Conversations returns the user's direct conversations, most recent first.
func (svc *Service) Conversations(ctx context.Context) ([]Conversation, error) {
	convs := make([]Conversation, 0)
	err := svc.api.Do(ctx, core.Get("/chat/conversations"), &convs)
	return convs, err
}

// Messages returns a conversation, oldest first. An empty Filter yields no messages.
func (svc *Service) Messages(ctx context.Context, f Filter) ([]Message, error) {
	msgs := make([]Message, 0)
	q := url.Values{}
	if id := core.CleanString(f.ClassID); id != "" {
		q.Set("class_id", id)
	} else if id := core.CleanString(f.ReceiverID); id != "" {
		q.Set("receiver_id", id)
	} else {
		return msgs, nil
	}
	err := svc.api.Do(ctx, core.Get("/chat/messages", q), &msgs)
	return msgs, err
}

func (svc *Service) Send(ctx context.Context, nm NewMessage) (Message, error) {
	var msg Message
	if err := nm.Validate(); err != nil {
		return msg, err
	}
	err := svc.api.Do(ctx, core.Post("/chat/messages", nm), &msg)
	return msg, err
}
