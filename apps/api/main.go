package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sahayak/apps/api/echo"
	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
	"github.com/trezcool/sahayak/services/identity"
	"github.com/trezcool/sahayak/services/logger"
	"github.com/trezcool/sahayak/storage/directory"
	"github.com/trezcool/sahayak/storage/kv"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up storage
	store, closeStore, err := kv.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeStore(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	// set up identity directory
	static := directory.NewStatic()
	dir := identitysvc.WithLatency(static, conf.Identity.LoginLatency, conf.Identity.OnboardingLatency)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	sess := session.NewStore(dir, store, func(o *session.Options) { o.Logger = logger })
	sess.Restore(context.Background())
	logger.Info(fmt.Sprintf("Session restored : %s", sess.State()))

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Session:    sess,
			Keys:       static.Keys(),
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
