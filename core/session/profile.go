package session

import (
	"context"

	"github.com/trezcool/prodigy/core"
)

// ProfileService saves profile changes on the backend.
type ProfileService struct {
	api core.Backend
}

func NewProfileService(api core.Backend) *ProfileService {
	return &ProfileService{api: api}
}

// Update sends upd to `PUT /auth/profile` and returns the profile stored by the backend.
func (svc *ProfileService) Update(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	if err := upd.Validate(); err != nil {
		return Profile{}, err
	}
	if upd.IsEmpty() {
		return Profile{}, core.NewValidationError(nil, core.FieldError{Field: "full_name", Error: "nothing to update"})
	}
	var usr Profile
	if err := svc.api.Do(ctx, core.Put("/auth/profile", upd), &usr); err != nil {
		return Profile{}, err
	}
	return usr, nil
}

// Me fetches the current user from the backend.
func (svc *ProfileService) Me(ctx context.Context) (Profile, error) {
	var usr Profile
	err := svc.api.Do(ctx, core.Get("/auth/me"), &usr)
	return usr, err
}
