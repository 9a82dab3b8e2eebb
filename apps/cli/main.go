package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
	"github.com/trezcool/sahayak/services/identity"
	"github.com/trezcool/sahayak/services/logger"
	"github.com/trezcool/sahayak/storage/directory"
	"github.com/trezcool/sahayak/storage/kv"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	if conf.Storage.Engine == core.StorageMemory {
		logger.Warn("memory storage: the session will not outlive this command")
	}

	ctx := context.Background()
	store, closeStore, err := kv.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	static := directory.NewStatic()
	sess := session.NewStore(
		identitysvc.WithLatency(static, conf.Identity.LoginLatency, conf.Identity.OnboardingLatency),
		store,
		func(o *session.Options) { o.Logger = logger },
	)
	sess.Restore(ctx)

	// start CLI
	cli := commandLine{
		store:    sess,
		keys:     static.Keys(),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(ctx, os.Args)
	if cErr := closeStore(); cErr != nil {
		logger.Error("closing storage", cErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %s\n", describe(err, translator))
		}
		os.Exit(1)
	}
}
