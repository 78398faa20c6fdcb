package echoweb

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/services/notify"
)

const (
	contextSessionKey = "session"
	contextFlashKey   = "flash"
)

var errSessionNotFoundInCtx = errors.New("session not found in echo.Context")

// sessionMiddleware attaches the browser session named by the session cookie.
// Browsers without a valid cookie share the anonymous, signed out session until they log in.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var sid string
		if c, err := ctx.Cookie(s.conf.Session.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}

		var bs *browserSession
		var err error
		if sid == "" {
			bs, err = s.hub.anonymous()
		} else {
			bs, err = s.hub.get(sid)
		}
		if err != nil {
			return errors.Wrap(err, "opening session")
		}
		bs.await(ctx.Request().Context(), s.hub.wait)

		ctx.Set(contextSessionKey, bs)
		ctx.Set(contextFlashKey, new(notify.Flash))
		return next(ctx)
	}
}

// openSession gives anonymous browsers a session of their own, with its cookie, before they sign in.
func (s *server) openSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		bs, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		if !s.hub.isAnonymous(bs) {
			return next(ctx)
		}

		sid := uuid.NewString()
		if bs, err = s.hub.get(sid); err != nil {
			return errors.Wrap(err, "opening session")
		}
		bs.await(ctx.Request().Context(), s.hub.wait)
		ctx.SetCookie(&http.Cookie{
			Name:     s.conf.Session.CookieName,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(s.conf.Session.TTL.Seconds()),
			HttpOnly: true,
			Secure:   s.conf.Web.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		ctx.Set(contextSessionKey, bs)
		return next(ctx)
	}
}

// authorize runs the route guard for the named view before next.
// Path parameters of the view are read from the echo route.
func (s *server) authorize(name string) echo.MiddlewareFunc {
	rt, ok := s.table.Lookup(name)
	if !ok {
		panic(errors.Wrap(route.ErrNotFound, name))
	}
	var paramNames []string
	for _, seg := range strings.Split(rt.Path, "/") {
		if strings.HasPrefix(seg, ":") {
			paramNames = append(paramNames, seg[1:])
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			params := make([]string, 0, len(paramNames))
			for _, p := range paramNames {
				params = append(params, ctx.Param(p))
			}
			path, err := s.table.Path(name, params...)
			if err != nil {
				return errors.Wrap(err, "building route path")
			}
			return s.resolve(ctx, path, next)
		}
	}
}

func (s *server) resolve(ctx echo.Context, path string, next echo.HandlerFunc) error {
	bs, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	out, err := route.NewGuard(s.table, bs.mgr).Resolve(path)
	if err != nil {
		if errors.Is(err, route.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving route")
	}

	switch out.Decision {
	case route.Placeholder:
		return ctx.JSON(http.StatusAccepted, echo.Map{"loading": true})
	case route.Redirect:
		return ctx.Redirect(http.StatusFound, out.Target)
	}
	return next(ctx)
}

func getContextSession(ctx echo.Context) (*browserSession, error) {
	if bs, ok := ctx.Get(contextSessionKey).(*browserSession); ok {
		return bs, nil
	}
	return nil, errSessionNotFoundInCtx
}

func getContextFlash(ctx echo.Context) *notify.Flash {
	if f, ok := ctx.Get(contextFlashKey).(*notify.Flash); ok {
		return f
	}
	return new(notify.Flash)
}

// page is the envelope of every view and action response.
type page struct {
	Data  interface{}           `json:"data,omitempty"`
	Flash []notify.FlashMessage `json:"flash,omitempty"`
}

func render(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, page{Data: data, Flash: getContextFlash(ctx).Drain()})
}
