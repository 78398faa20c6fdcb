package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
)

const (
	defaultInitWait = 2 * time.Second
	sweepInterval   = time.Minute
)

type (
	ServerDeps struct {
		Conf     *core.Config
		Logger   core.Logger
		Sessions session.Provider
		Backend  backend.Options

		// InitWait bounds how long a request waits for its session to be revalidated
		// before the loading placeholder is served instead.
		InitWait time.Duration
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		conf     *core.Config
		logger   core.Logger
		sessions session.Provider
		hub      *hub
		table    *route.Table
		app      *echo.Echo

		errors   chan error
		shutdown chan os.Signal
		done     chan struct{}
		stopOnce sync.Once
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	wait := deps.InitWait
	if wait <= 0 {
		wait = defaultInitWait
	}
	s := &server{
		conf:     deps.Conf,
		logger:   deps.Logger,
		sessions: deps.Sessions,
		hub:      newHub(deps.Sessions, deps.Backend, deps.Logger, wait),
		table:    route.DefaultTable(),
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
		done:     make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Web.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.table, s.signalShutdown)
	s.app.Debug = s.conf.Debug
	s.app.HideBanner = true

	s.app.GET("/healthz", healthz)

	g := s.app.Group("", s.sessionMiddleware)
	registerAuthViews(g, s)
	registerPages(g, s)
	registerActions(g, s)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	go s.sweep()
	if err := s.app.Start(s.conf.Web.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	s.stop()
	return s.app.Close()
}

func (s *server) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		signal.Stop(s.shutdown)
		s.hub.closeAll()
	})
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// purger is implemented by the session providers keeping expired rows around.
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// sweep forgets idle browser sessions and purges expired stored ones.
func (s *server) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.hub.prune(s.conf.Session.TTL); n > 0 {
				s.logger.Debug("pruned idle sessions", map[string]interface{}{"count": n})
			}
			if p, ok := s.sessions.(purger); ok {
				if _, err := p.Purge(context.Background()); err != nil {
					s.logger.Error("purging expired sessions", err)
				}
			}
		}
	}
}

func healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
