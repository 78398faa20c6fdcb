package main

import (
	"context"
	"fmt"
	"log"

	echoweb "github.com/trezcool/prodigy/apps/web/echo"
	dig_container "github.com/trezcool/prodigy/apps/web/di"
	"github.com/trezcool/prodigy/core"
	logsvc "github.com/trezcool/prodigy/services/logger"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		rollbar *logsvc.RollbarLogger,
		logger core.Logger,
		closers dig_container.Closers,
		server echoweb.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer rollbar.Close()
		defer logger.Info("Application stopped")
		defer func() {
			for _, closer := range closers {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close", err)
				}
			}
		}()

		// =========================================================================
		// Start Web Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Web.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
