package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/dig"

	"github.com/myschool/myschool/apps/api/di"
	echoapi "github.com/myschool/myschool/apps/api/echo"
	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/student"
	"github.com/myschool/myschool/core/user"
	logsvc "github.com/myschool/myschool/services/logger"
)

type appParams struct {
	dig.In
	Conf       *core.Config
	Rollbar    *logsvc.RollbarLogger
	Logger     core.Logger
	DBLogger   core.Logger `name:"dbLogger"`
	Closers    di.Closers
	Validate   *validator.Validate
	Translator ut.Translator
	Server     *echoapi.Server
}

func main() {
	c := di.New()
	if err := c.Invoke(start); err != nil {
		log.Fatal(err)
	}
}

func start(p appParams) {
	conf, logger := p.Conf, p.Logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer p.Rollbar.Close()
	defer logger.Info("Application stopped")
	defer func() {
		if err := p.Closers.KV(); err != nil {
			logger.Error("closing kv store", err)
		}
		if err := p.Closers.DB(); err != nil {
			p.DBLogger.Error("Failed to close", err)
		}
	}()

	core.InitValidators(p.Validate, p.Translator)
	user.InitValidators(p.Validate, p.Translator)
	student.InitValidators(p.Validate, p.Translator)

	core.ParseEmailTemplates(logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := p.Server
	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
