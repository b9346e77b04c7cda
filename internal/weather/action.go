package weather

import "fmt"

// Action is implemented by every action of the weather application. Names
// follow the Category+Verb convention, with "Did" marking results of async
// work.
type Action interface {
	isAction()
}

type (
	// AppInit starts subscriptions and the first fetch.
	AppInit struct{}

	WeatherFetch    struct{}
	WeatherDidLoad  struct{ Conditions Conditions }
	WeatherDidError struct{ Err string }

	SearchOpen        struct{}
	SearchClose       struct{}
	SearchQueryChange struct{ Query string }
	SearchDidLoad     struct {
		Query   string
		Results []Location
	}
	SearchDidError struct {
		Query string
		Err   string
	}
	SearchInput     struct{ Text string }
	SearchBackspace struct{}
	SearchMove      struct{ Delta int }
	SearchSelect    struct{}

	UiToggleUnits    struct{}
	UiTerminalResize struct{ Width, Height int }

	PrefsDidSave  struct{}
	PrefsDidError struct{ Err string }

	Tick struct{}
	Quit struct{}
)

func (AppInit) isAction()           {}
func (WeatherFetch) isAction()      {}
func (WeatherDidLoad) isAction()    {}
func (WeatherDidError) isAction()   {}
func (SearchOpen) isAction()        {}
func (SearchClose) isAction()       {}
func (SearchQueryChange) isAction() {}
func (SearchDidLoad) isAction()     {}
func (SearchDidError) isAction()    {}
func (SearchInput) isAction()       {}
func (SearchBackspace) isAction()   {}
func (SearchMove) isAction()        {}
func (SearchSelect) isAction()      {}
func (UiToggleUnits) isAction()     {}
func (UiTerminalResize) isAction()  {}
func (PrefsDidSave) isAction()      {}
func (PrefsDidError) isAction()     {}
func (Tick) isAction()              {}
func (Quit) isAction()              {}

// Params keeps result payloads short in logs and history.
func (a SearchDidLoad) Params() string {
	return fmt.Sprintf("%s (%d results)", a.Query, len(a.Results))
}

// Params keeps the reading compact in logs and history.
func (a WeatherDidLoad) Params() string {
	return a.Conditions.Description + " " + Celsius.Format(a.Conditions.Temperature)
}

// IsQuit reports whether a ends the dispatch loop.
func IsQuit(a Action) bool {
	_, ok := a.(Quit)
	return ok
}
