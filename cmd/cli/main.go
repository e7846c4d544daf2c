package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/harvesthub/internal/buildinfo"
	"github.com/dmitrijs2005/harvesthub/internal/client/api"
	"github.com/dmitrijs2005/harvesthub/internal/client/cli"
	"github.com/dmitrijs2005/harvesthub/internal/client/config"
	"github.com/dmitrijs2005/harvesthub/internal/client/controller"
	"github.com/dmitrijs2005/harvesthub/internal/client/estimate"
	"github.com/dmitrijs2005/harvesthub/internal/client/notify"
	"github.com/dmitrijs2005/harvesthub/internal/client/session"
	"github.com/dmitrijs2005/harvesthub/internal/client/storage"
	"github.com/dmitrijs2005/harvesthub/internal/filex"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
			log.Fatalf("%v", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		log.Fatalf("%v", err)
	}
	store, err := storage.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer store.Close()

	app := cli.NewApp(os.Stdin, os.Stdout, logger)
	ctrl := controller.New(controller.Deps{
		API:       api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, logger),
		Sessions:  session.NewStore(store, logger),
		Notifier:  notify.NewSurface(os.Stdout, cfg.NotifyTTL),
		Navigator: app,
		Estimator: estimate.New(),
		Out:       os.Stdout,
		Log:       logger,
	}, controller.Options{
		RedirectDelay: cfg.RedirectDelay,
		PaymentDelay:  cfg.PaymentDelay,
		RemoteClaims:  cfg.ClaimMode == config.ClaimModeRemote,
	})
	app.Bind(ctrl)

	logger.Info(ctx, "starting", "api", cfg.APIBaseURL, "db", cfg.DatabasePath, "claim_mode", cfg.ClaimMode)
	app.Run(ctx)

}
