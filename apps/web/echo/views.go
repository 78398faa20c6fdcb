package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/prodigy/core/ai"
	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/calendar"
	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/dashboard"
	"github.com/trezcool/prodigy/core/drive"
	"github.com/trezcool/prodigy/core/leaderboard"
	"github.com/trezcool/prodigy/core/notification"
	"github.com/trezcool/prodigy/core/search"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/notify"
)

// views are the services of one request, talking to the backend with the browser's credential.
type views struct {
	browser *browserSession
	mgr     *session.Manager
	flash   *notify.Flash

	profiles      *session.ProfileService
	classes       *class.Service
	assignments   *assignment.Service
	drive         *drive.Service
	chat          *chat.Service
	notifications *notification.Service
	ai            *ai.Service
	calendar      *calendar.Service
	leaderboard   *leaderboard.Service
	search        *search.Service
	dashboards    *dashboard.Builder
}

type viewFunc func(ctx echo.Context, v *views) error

func handle(fn viewFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		bs, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		flash := getContextFlash(ctx)
		api := bs.api
		return fn(ctx, &views{
			browser:       bs,
			mgr:           bs.mgr,
			flash:         flash,
			profiles:      session.NewProfileService(api),
			classes:       class.NewService(api),
			assignments:   assignment.NewService(api),
			drive:         drive.NewService(api),
			chat:          chat.NewService(api),
			notifications: notification.NewService(api),
			ai:            ai.NewService(api),
			calendar:      calendar.NewService(api),
			leaderboard:   leaderboard.NewService(api),
			search:        search.NewService(api),
			dashboards:    dashboard.NewBuilder(api, flash),
		})
	}
}

// user is the signed in user. Views behind the guard always have one.
func (v *views) user() session.Profile {
	usr, _ := v.mgr.User()
	return usr
}

// threads are the chat conversations of the user, kept across requests.
func (v *views) threads() *chat.Threads {
	return v.browser.chatThreads(v.user().ID)
}
