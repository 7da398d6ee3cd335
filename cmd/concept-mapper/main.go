package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/concept-mapper/pkg/builder"
	"github.com/ritzau/concept-mapper/pkg/concepts"
	"github.com/ritzau/concept-mapper/pkg/config"
	"github.com/ritzau/concept-mapper/pkg/finder"
	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/output"
	"github.com/ritzau/concept-mapper/pkg/render"
	"github.com/ritzau/concept-mapper/pkg/store"
	"github.com/ritzau/concept-mapper/pkg/watcher"
	"github.com/ritzau/concept-mapper/pkg/web"
)

func main() {
	flags := pflag.NewFlagSet("concept-mapper", pflag.ExitOnError)
	config.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Setup(os.Stderr, logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt), cfg.JSONLogs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := newStore(cfg)

	switch {
	case cfg.WebMode:
		err = runWeb(ctx, cfg, st)
	case cfg.Watch:
		err = runWatch(ctx, cfg, st)
	default:
		err = runOnce(ctx, cfg, st)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("concept-mapper failed", "error", err)
	}
}

func newStore(cfg *config.Config) *store.Store {
	b := builder.New(concepts.NewExtractor(cfg.ExtractOptions())).WithCanvas(cfg.Width, cfg.Height)
	r := render.NewRenderer(render.NewGGRasterizer(), cfg.RenderOptions())
	return store.New(b, r)
}

// createAll builds one map per input, returning the ids in input order
func createAll(cfg *config.Config, st *store.Store, inputs []finder.Input) ([]string, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		title := cfg.Title
		if title == "" {
			title = in.Title
		}
		id, err := st.Create(in.Text, title, cfg.Layout, cfg.Scheme)
		if err != nil {
			return ids, fmt.Errorf("%s: %w", in.Path, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadInputs stores the maps named by --input: a data export is restored,
// text documents are built from scratch.
func loadInputs(cfg *config.Config, st *store.Store) ([]string, error) {
	if isSnapshot(cfg.Input) {
		id, err := importSnapshot(st, cfg.Input)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	}

	inputs, err := finder.ReadInputs(cfg.Input, os.Stdin)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no .txt or .md files found in %s", cfg.Input)
	}
	return createAll(cfg, st, inputs)
}

func runOnce(ctx context.Context, cfg *config.Config, st *store.Store) error {
	ids, err := loadInputs(cfg, st)
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	many := len(ids) > 1
	for _, id := range ids {
		m, err := st.Get(id)
		if err != nil {
			return err
		}
		output.PrintMap(os.Stderr, id, m)

		if err := emit(ctx, st, id, format, destination(cfg.Output, id, format.Name(), many), os.Stdout); err != nil {
			return err
		}
	}
	if many {
		output.PrintSummaries(os.Stderr, st.List())
	}
	return nil
}

// watchInput wires file watcher, debouncer and regenerator together and
// returns once ctx is cancelled.
func watchInput(ctx context.Context, cfg *config.Config, st *store.Store, onCreated func(id, path string)) error {
	if cfg.Input == "" || cfg.Input == "-" {
		return errors.New("--watch needs --input")
	}
	if isSnapshot(cfg.Input) {
		return errors.New("--watch needs a text input, not a data export")
	}

	fw, err := watcher.NewFileWatcher(cfg.Input)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	quiet := time.Duration(cfg.DebounceMs) * time.Millisecond
	debouncer := watcher.NewDebouncer(fw.Events(), quiet, 10*quiet)
	debouncer.Start(ctx)

	regen := &watcher.Regenerator{
		Creator:   st,
		Title:     cfg.Title,
		Layout:    cfg.Layout,
		Scheme:    cfg.Scheme,
		OnCreated: onCreated,
	}
	regen.Run(ctx, debouncer.Output())
	return ctx.Err()
}

func runWatch(ctx context.Context, cfg *config.Config, st *store.Store) error {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	if err := runOnce(ctx, cfg, st); err != nil {
		return err
	}

	return watchInput(ctx, cfg, st, func(id, path string) {
		if m, err := st.Get(id); err == nil {
			output.PrintMap(os.Stderr, id, m)
		}
		// A single input keeps overwriting the same output
		dest := cfg.Output
		if info, err := os.Stat(cfg.Input); err == nil && info.IsDir() {
			dest = destination(cfg.Output, id, format.Name(), true)
		}
		if err := emit(ctx, st, id, format, dest, os.Stdout); err != nil {
			logging.Error("failed to write rebuilt map", "mapID", id, "error", err)
		}
	})
}

func runWeb(ctx context.Context, cfg *config.Config, st *store.Store) error {
	server := web.NewServer(st)

	if cfg.Input != "" && cfg.Input != "-" {
		ids, err := loadInputs(cfg, st)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := server.PublishMapCreated(id, "cli"); err != nil {
				logging.Warn("could not publish map event", "mapID", id, "error", err)
			}
		}
		logging.Info("loaded input maps", "count", len(ids))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Port)
	}()

	if cfg.Watch {
		go func() {
			err := watchInput(ctx, cfg, st, func(id, path string) {
				if err := server.PublishMapCreated(id, "watch"); err != nil {
					logging.Warn("could not publish map event", "mapID", id, "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error("watch mode stopped", "error", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
