package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrazmi/yata/app/tooling/commands"
	"github.com/jrazmi/yata/sdk/environment"
	"github.com/jrazmi/yata/sdk/logger"
)

var build = "develop"
var appName = "YATA"

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	log, err := logger.NewFromEnv(appName, logger.WithService("yata-tooling"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "oh no we couldn't even get logging going:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCommand(commands.Env{
		Prefix:  appName,
		Log:     log,
		Version: build,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "tooling", "error", err)
		os.Exit(1)
	}
}
