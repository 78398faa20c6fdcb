package dig_container

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoweb "github.com/trezcool/prodigy/apps/web/echo"
	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
	logsvc "github.com/trezcool/prodigy/services/logger"
	inmemstore "github.com/trezcool/prodigy/storage/session/inmem"
	"github.com/trezcool/prodigy/storage/session/redisstore"
	"github.com/trezcool/prodigy/storage/session/sqlxstore"
)

const connectTimeout = 10 * time.Second

// Closers are the connections to release at shutdown.
type Closers []io.Closer

func newRollbarLogger(console *logsvc.ZapLogger, conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(console, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newLogger(logger *logsvc.RollbarLogger) core.Logger { return logger }

// newSessionProvider opens the browser session store selected by conf.Session.Store.
func newSessionProvider(conf *core.Config, logger core.Logger) (session.Provider, Closers, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch conf.Session.Store {
	case "", "memory":
		if !conf.Debug {
			logger.Warn("in-memory sessions are lost on restart")
		}
		return inmemstore.NewDB(), nil, nil
	case "redis":
		client, err := redisstore.Open(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewProvider(client, conf.Session.TTL), Closers{client}, nil
	case "postgres":
		db, err := sqlxstore.Open(ctx, conf.Database)
		if err != nil {
			return nil, nil, err
		}
		return sqlxstore.NewProvider(db, conf.Session.TTL), Closers{db}, nil
	}
	return nil, nil, errors.Errorf("unknown session store %q", conf.Session.Store)
}

func newBackendOptions(conf *core.Config) backend.Options {
	return backend.Options{
		BaseURL:   conf.Backend.BaseURL,
		Timeout:   conf.Backend.Timeout,
		UserAgent: conf.AppName + "/" + conf.Build,
	}
}

func newServer(conf *core.Config, logger core.Logger, sessions session.Provider, opts backend.Options) echoweb.Server {
	return echoweb.NewServer(echoweb.ServerDeps{
		Conf:     conf,
		Logger:   logger,
		Sessions: sessions,
		Backend:  opts,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.LoadConfig))
	must(c.Provide(logsvc.NewZapLogger))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newSessionProvider))
	must(c.Provide(newBackendOptions))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
