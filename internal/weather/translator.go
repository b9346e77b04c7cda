package weather

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jask/tuidispatch/runtime"
	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

// Registry keys.
const (
	TaskWeather    tasks.Key = "weather"
	TaskCitySearch tasks.Key = "city_search"
	TaskSavePrefs  tasks.Key = "save_prefs"

	SubTick    subscriptions.Key = "tick"
	SubRefresh subscriptions.Key = "refresh"
)

// Deps are the collaborators and timings used to carry out effects.
type Deps struct {
	Client   *Client
	Save     func(Location, Units) error
	Tick     time.Duration
	Refresh  time.Duration
	Debounce time.Duration
	Timeout  time.Duration
}

// Translator returns the effect translator for the weather application.
func Translator(d Deps) runtime.Translator[Action, Effect] {
	return func(e Effect, c *runtime.Context[Action]) {
		switch e := e.(type) {
		case StartSubscriptions:
			if err := c.Subscriptions().Interval(SubTick, d.Tick, func() Action { return Tick{} }); err != nil {
				c.Logger().Error("start tick", slog.Any("error", err))
			}
			if err := c.Subscriptions().Interval(SubRefresh, d.Refresh, func() Action { return WeatherFetch{} }); err != nil {
				c.Logger().Error("start refresh", slog.Any("error", err))
			}

		case FetchWeather:
			loc := e.Location
			c.Tasks().Spawn(TaskWeather, func(ctx context.Context) Action {
				ctx, cancel := d.withTimeout(ctx)
				defer cancel()
				cond, err := d.Client.Current(ctx, loc)
				if err != nil {
					return WeatherDidError{Err: describeErr(err)}
				}
				return WeatherDidLoad{Conditions: cond}
			})

		case SearchCities:
			query := e.Query
			c.Tasks().Debounce(TaskCitySearch, d.Debounce, func(ctx context.Context) Action {
				ctx, cancel := d.withTimeout(ctx)
				defer cancel()
				results, err := d.Client.SearchCities(ctx, query)
				if err != nil {
					return SearchDidError{Query: query, Err: describeErr(err)}
				}
				return SearchDidLoad{Query: query, Results: results}
			})

		case CancelSearch:
			c.Tasks().Cancel(TaskCitySearch)

		case SavePreferences:
			if d.Save == nil {
				return
			}
			loc, units := e.Location, e.Units
			c.Tasks().Spawn(TaskSavePrefs, func(context.Context) Action {
				if err := d.Save(loc, units); err != nil {
					return PrefsDidError{Err: err.Error()}
				}
				return PrefsDidSave{}
			})
		}
	}
}

func (d Deps) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Timeout)
}

func describeErr(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
