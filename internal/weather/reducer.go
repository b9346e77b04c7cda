package weather

import (
	"strings"

	"github.com/jask/tuidispatch/store"
)

// Result is the reducer's return type.
type Result = store.Result[Effect]

// Reduce is the weather application's reducer.
func Reduce(s *State, a Action) Result {
	switch a := a.(type) {
	case AppInit:
		s.Loading = true
		s.Err = ""
		return store.ChangedWith[Effect](StartSubscriptions{}, FetchWeather{Location: s.Location})

	case WeatherFetch:
		s.Loading = true
		s.Err = ""
		return store.ChangedWith[Effect](FetchWeather{Location: s.Location})

	case WeatherDidLoad:
		c := a.Conditions
		s.Weather = &c
		s.Loading = false
		s.Err = ""
		s.AnimRemaining = finishCycle(s.TickCount)
		return store.Changed[Effect]()

	case WeatherDidError:
		s.Loading = false
		s.Err = a.Err
		s.AnimRemaining = 0
		return store.Changed[Effect]()

	case SearchOpen:
		if s.Search.Open {
			return store.Unchanged[Effect]()
		}
		s.Search = SearchState{Open: true}
		return store.Changed[Effect]()

	case SearchClose:
		if !s.Search.Open {
			return store.Unchanged[Effect]()
		}
		s.Search = SearchState{}
		return store.ChangedWith[Effect](CancelSearch{})

	case SearchQueryChange:
		if !s.Search.Open || a.Query == s.Search.Query {
			return store.Unchanged[Effect]()
		}
		s.Search.Query = a.Query
		s.Search.Selected = 0
		s.Search.Err = ""
		if strings.TrimSpace(a.Query) == "" {
			s.Search.Results = nil
			s.Search.Loading = false
			return store.ChangedWith[Effect](CancelSearch{})
		}
		s.Search.Loading = true
		return store.ChangedWith[Effect](SearchCities{Query: strings.TrimSpace(a.Query)})

	case SearchInput:
		return Reduce(s, SearchQueryChange{Query: s.Search.Query + a.Text})

	case SearchBackspace:
		r := []rune(s.Search.Query)
		if len(r) == 0 {
			return store.Unchanged[Effect]()
		}
		return Reduce(s, SearchQueryChange{Query: string(r[:len(r)-1])})

	case SearchDidLoad:
		if !s.Search.Open || a.Query != strings.TrimSpace(s.Search.Query) {
			return store.Unchanged[Effect]()
		}
		s.Search.Results = a.Results
		s.Search.Selected = 0
		s.Search.Loading = false
		s.Search.Err = ""
		return store.Changed[Effect]()

	case SearchDidError:
		if !s.Search.Open || a.Query != strings.TrimSpace(s.Search.Query) {
			return store.Unchanged[Effect]()
		}
		s.Search.Results = nil
		s.Search.Loading = false
		s.Search.Err = a.Err
		return store.Changed[Effect]()

	case SearchMove:
		n := len(s.Search.Results)
		if n == 0 {
			return store.Unchanged[Effect]()
		}
		next := min(max(s.Search.Selected+a.Delta, 0), n-1)
		if next == s.Search.Selected {
			return store.Unchanged[Effect]()
		}
		s.Search.Selected = next
		return store.Changed[Effect]()

	case SearchSelect:
		loc, ok := s.Selection()
		if !ok {
			return store.Unchanged[Effect]()
		}
		s.Location = loc
		s.Search = SearchState{}
		s.Weather = nil
		s.Loading = true
		s.Err = ""
		return store.ChangedWith[Effect](
			FetchWeather{Location: loc},
			SavePreferences{Location: loc, Units: s.Units},
		)

	case UiToggleUnits:
		s.Units = s.Units.Toggle()
		return store.ChangedWith[Effect](SavePreferences{Location: s.Location, Units: s.Units})

	case UiTerminalResize:
		if s.Width == a.Width && s.Height == a.Height {
			return store.Unchanged[Effect]()
		}
		s.Width, s.Height = a.Width, a.Height
		return store.Changed[Effect]()

	case PrefsDidError:
		s.Err = "save preferences: " + a.Err
		return store.Changed[Effect]()

	case Tick:
		s.TickCount++
		if s.Loading {
			return store.Changed[Effect]()
		}
		if s.AnimRemaining > 0 {
			s.AnimRemaining--
			return store.Changed[Effect]()
		}
		return store.Unchanged[Effect]()
	}
	return store.Unchanged[Effect]()
}

// finishCycle returns the ticks left until the animation completes its
// current cycle.
func finishCycle(tick int) int {
	r := tick % AnimCycleTicks
	if r == 0 {
		return 0
	}
	return AnimCycleTicks - r
}
