package session

import "context"

type (
	// Store persists the bearer credential and the last known Profile across restarts.
	// Absence is not an error: Load returns ("", nil, nil) when nothing was saved or after Clear.
	Store interface {
		// Save overwrites both entries.
		Save(ctx context.Context, credential string, profile Profile) error
		Load(ctx context.Context) (credential string, profile *Profile, err error)
		// Clear removes both entries.
		Clear(ctx context.Context) error
	}

	// Provider hands out the Store of one browser session (keyed stores).
	Provider interface {
		For(sid string) Store
	}

	// ProviderFunc adapts a func to a Provider.
	ProviderFunc func(sid string) Store
)

func (fn ProviderFunc) For(sid string) Store { return fn(sid) }
