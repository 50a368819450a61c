// Command nogoctl drives the editing controller headlessly against a live
// routing engine and nogo store, and carries store maintenance tasks.
//
//	nogoctl [flags] run <script|->
//	nogoctl [flags] fix
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/config"
	"cycle_planner/internal/editor"
	"cycle_planner/internal/hub"
	"cycle_planner/internal/logger"
	"cycle_planner/internal/nogoclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nogoctl: %v\n", err)
		os.Exit(2)
	}

	brouterURL := flag.String("brouter", cfg.BrouterURL, "routing engine base URL")
	apiURL := flag.String("api", cfg.NogoAPIURL, "nogo store base URL")
	watch := flag.Bool("watch", false, "follow the store's change feed while running a script")
	timeout := flag.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: nogoctl [flags] run <script|->\n       nogoctl [flags] fix\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Stdout: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := nogoclient.New(*apiURL, *timeout)

	switch flag.Arg(0) {
	case "run":
		if flag.NArg() != 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = run(ctx, flag.Arg(1), brouter.New(*brouterURL, *timeout), store, *watch)
	case "fix":
		var fixed int
		fixed, err = fixNogos(ctx, store)
		logrus.WithField("count", fixed).Info("Fix finished")
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logrus.WithError(err).Error("nogoctl failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, router editor.Router, store *nogoclient.Client, watch bool) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		in = f
	}
	steps, err := parseScript(in)
	if err != nil {
		return err
	}

	m := editor.NewLogMap(logrus.WithField("component", "map"))
	ctrl := editor.NewController(m, router, store, editor.DefaultControls()...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ctrl.Run(ctx)

	if watch {
		go func() {
			err := store.Watch(ctx, func(ev hub.ChangeEvent) {
				logrus.WithFields(logrus.Fields{
					"created": ev.Created,
					"deleted": ev.Deleted,
				}).Debug("Remote nogo change")
				ctrl.Dispatch(editor.NogosChanged{})
			})
			if err != nil {
				logrus.WithError(err).Warn("Change feed closed")
			}
		}()
	}

	if err := runScript(ctrl, m, steps); err != nil {
		return err
	}

	s := ctrl.State()
	logrus.WithFields(logrus.Fields{
		"mode":     s.Mode.String(),
		"pending":  len(s.PendingPoints),
		"selected": len(s.SelectedNogoIDs),
		"epoch":    s.Epoch,
	}).Info("Script finished")
	if s.Err != "" {
		return fmt.Errorf("last operation failed: %s", s.Err)
	}
	return nil
}
