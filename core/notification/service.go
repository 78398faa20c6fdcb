package notification

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

var ErrMissingID = errors.New("missing notification id")

type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// List returns the latest notifications of the current user, newest first.
func (svc *Service) List(ctx context.Context) ([]Notification, error) {
	notifs := make([]Notification, 0)
	err := svc.api.Do(ctx, core.Get("/notifications"), &notifs)
	return notifs, err
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	if id = core.CleanString(id); id == "" {
		return ErrMissingID
	}
	return svc.api.Do(ctx, core.Put("/notifications/"+url.PathEscape(id)+"/read", nil), nil)
}

func (svc *Service) MarkAllRead(ctx context.Context) error {
	return svc.api.Do(ctx, core.Put("/notifications/read-all", nil), nil)
}
