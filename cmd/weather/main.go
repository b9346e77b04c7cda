package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jask/tuidispatch/history"
	"github.com/jask/tuidispatch/internal/config"
	"github.com/jask/tuidispatch/internal/historydb"
	"github.com/jask/tuidispatch/internal/prefs"
	"github.com/jask/tuidispatch/internal/telemetry"
	"github.com/jask/tuidispatch/internal/tui"
	"github.com/jask/tuidispatch/internal/weather"
	"github.com/jask/tuidispatch/middleware"
	"github.com/jask/tuidispatch/runtime"
	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

type appRuntime = runtime.Runtime[weather.State, weather.Action, weather.Effect]

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	prefStore, err := prefs.NewStore("")
	if err != nil {
		log.Fatalf("prefs: %v", err)
	}
	// restore the last selection if present
	if w, ok, err := prefStore.LoadWeather(); err != nil {
		logger.Warn("load preferences", slog.Any("error", err))
	} else if ok {
		cfg.Weather.City, cfg.Weather.Latitude, cfg.Weather.Longitude = w.City, w.Latitude, w.Longitude
		if w.Units != "" {
			cfg.Weather.Units = w.Units
		}
	}

	units, err := weather.ParseUnits(cfg.Weather.Units)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	filter, err := history.ParseFilter(cfg.History.Include, cfg.History.Exclude)
	if err != nil {
		log.Fatalf("history filter: %v", err)
	}

	rt := runtime.New(
		weather.NewState(weather.Location{
			Name: cfg.Weather.City,
			Lat:  cfg.Weather.Latitude,
			Lon:  cfg.Weather.Longitude,
		}, units),
		weather.Reduce,
		weather.Translator(weather.Deps{
			Client: weather.NewClient(
				weather.WithHTTPClient(telemetry.HTTPClient()),
				weather.WithBaseURL(cfg.Weather.BaseURL),
				weather.WithGeocodeURL(cfg.Weather.GeocodeURL),
				weather.WithClientLogger(logger),
			),
			Save:     savePrefs(prefStore),
			Tick:     cfg.Runtime.TickInterval,
			Refresh:  cfg.Runtime.RefreshInterval,
			Debounce: cfg.Runtime.SearchDebounce,
			Timeout:  cfg.Weather.Timeout,
		}),
		runtime.WithLogger(logger),
		runtime.WithTaskOptions(tasks.WithPausePolicy(cfg.Runtime.TaskPausePolicy())),
		runtime.WithSubscriptionOptions(subscriptions.WithPausePolicy(cfg.Runtime.SubscriptionPausePolicy())),
	)

	recOpts := []history.Option{history.WithFilter(filter), history.WithLogger(logger)}
	var repo *historydb.Repo
	if cfg.History.DBPath != "" {
		db, err := historydb.Open(cfg.History.DBPath)
		if err != nil {
			log.Fatalf("open history db: %v", err)
		}
		defer db.Close()
		if err := historydb.RunMigrations(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		repo = historydb.NewRepo(db, rt.Session())
		recOpts = append(recOpts, history.WithSink(repo))
	}
	recorder := history.NewRecorder[weather.Action](cfg.History.Capacity, recOpts...)

	rt.Use(
		middleware.Tracing[weather.State, weather.Action, weather.Effect](),
		middleware.Metrics[weather.State, weather.Action, weather.Effect](),
		middleware.Logging[weather.State, weather.Action, weather.Effect](logger),
		history.Middleware[weather.State, weather.Action, weather.Effect](recorder),
	)

	model := tui.NewModel(tui.Config[weather.Action]{
		Sender:    rt.Sender(),
		Keys:      weather.KeyMap(),
		Resize:    weather.Resize,
		Inspector: rt,
		Status:    func() string { return status(rt) },
		History:   recorder.Last,
		Initial:   weather.Render(rt.State()),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	tui.Attach(rt, p, weather.Render)

	rt.Enqueue(weather.AppInit{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.Quit()
		return rt.Run(gctx, weather.IsQuit)
	})
	g.Go(func() error {
		_, err := p.Run()
		// the program may stop on its own, for example on a signal
		rt.Enqueue(weather.Quit{})
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	rt.Wait()

	if repo != nil {
		if n, err := repo.Prune(ctx, cfg.History.Capacity*10); err != nil {
			logger.Warn("prune history", slog.Any("error", err))
		} else if n > 0 {
			logger.Info("pruned history", slog.Int64("rows", n))
		}
	}
}

func openLogger(c config.LogConfig) (*slog.Logger, func(), error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if c.Path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h), func() { _ = f.Close() }, nil
}

// savePrefs remembers the chosen city and units for the next run.
func savePrefs(store *prefs.Store) func(weather.Location, weather.Units) error {
	return func(loc weather.Location, u weather.Units) error {
		return store.SaveWeather(prefs.Weather{
			City:      loc.Name,
			Latitude:  loc.Lat,
			Longitude: loc.Lon,
			Units:     u.String(),
		})
	}
}

func status(rt *appRuntime) string {
	var parts []string
	if keys := rt.Tasks().Keys(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = string(k)
		}
		parts = append(parts, "tasks: "+strings.Join(names, ","))
	}
	if rt.Frozen() {
		parts = append(parts, fmt.Sprintf("held: %d tasks (%s), %d ticks (%s)",
			rt.Tasks().Buffered(), rt.Tasks().Policy(),
			rt.Subscriptions().Buffered(), rt.Subscriptions().Policy()))
	}
	return strings.Join(parts, "  ")
}
