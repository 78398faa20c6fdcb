package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/session"
)

type authResponse struct {
	User session.Profile `json:"user"`
	Home string          `json:"home"`
}

func registerAuthViews(g *echo.Group, s *server) {
	g.GET("/", s.root)
	g.GET("/session", handle(currentSession))
	g.POST("/logout", handle(logout))

	// public views
	g.POST(route.LoginPath, handle(login), s.authorize(route.Login), s.openSession)
	g.POST(route.SignupPath, handle(signup), s.authorize(route.Signup), s.openSession)
	g.GET("/help", handle(help), s.authorize(route.Help))
}

// root sends the browser to its home view, or to login.
func (s *server) root(ctx echo.Context) error {
	return s.resolve(ctx, route.RootPath, func(echo.Context) error { return errHttpNotFound })
}

func currentSession(ctx echo.Context, v *views) error {
	return render(ctx, http.StatusOK, v.mgr.State())
}

func login(ctx echo.Context, v *views) error {
	var data session.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	usr, err := v.mgr.Login(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Welcome back, " + usr.DisplayName() + "!")
	return render(ctx, http.StatusOK, authResponse{User: usr, Home: route.HomeFor(usr.Role)})
}

func signup(ctx echo.Context, v *views) error {
	var data session.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	usr, err := v.mgr.Signup(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Welcome to PRODIGY, " + usr.DisplayName() + "!")
	return render(ctx, http.StatusCreated, authResponse{User: usr, Home: route.HomeFor(usr.Role)})
}

func logout(ctx echo.Context, v *views) error {
	v.mgr.Logout(ctx.Request().Context())
	v.flash.Success("Logged out")
	return render(ctx, http.StatusOK, v.mgr.State())
}

func help(ctx echo.Context, v *views) error {
	return render(ctx, http.StatusOK, echo.Map{
		"login":  route.LoginPath,
		"signup": route.SignupPath,
		"roles":  session.AllRoles,
	})
}
