package weather

import (
	"fmt"
	"strings"
	"time"
)

// Units selects how temperatures are displayed. Conditions always carry
// Celsius.
type Units int

const (
	Celsius Units = iota
	Fahrenheit
)

// ParseUnits accepts "celsius"/"c" and "fahrenheit"/"f".
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "celsius", "c":
		return Celsius, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	}
	return Celsius, fmt.Errorf("unknown units %q", s)
}

func (u Units) String() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}

// Toggle switches between Celsius and Fahrenheit.
func (u Units) Toggle() Units {
	if u == Celsius {
		return Fahrenheit
	}
	return Celsius
}

// Format renders a Celsius reading in u.
func (u Units) Format(celsius float64) string {
	if u == Fahrenheit {
		return fmt.Sprintf("%.1f°F", celsius*9/5+32)
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

// Location is a named coordinate.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// Conditions is the current weather at a location.
type Conditions struct {
	Temperature float64
	WindSpeed   float64
	Code        int
	Description string
	ObservedAt  time.Time
}

// Loading animation timing.
const (
	AnimCycleTicks = 12
)

// SearchState is the city search overlay.
type SearchState struct {
	Open     bool
	Query    string
	Results  []Location
	Selected int
	Loading  bool
	Err      string
}

// State is everything the view needs.
type State struct {
	Location Location
	Units    Units
	Weather  *Conditions
	Loading  bool
	Err      string

	TickCount     int
	AnimRemaining int

	Width  int
	Height int

	Search SearchState
}

// NewState creates the initial state for loc.
func NewState(loc Location, units Units) State {
	return State{Location: loc, Units: units, Width: 80, Height: 24}
}

// Animating reports whether the loading animation should advance on ticks.
func (s *State) Animating() bool {
	return s.Loading || s.AnimRemaining > 0
}

// Selection returns the highlighted search result.
func (s *State) Selection() (Location, bool) {
	r := s.Search.Results
	if s.Search.Selected < 0 || s.Search.Selected >= len(r) {
		return Location{}, false
	}
	return r[s.Search.Selected], true
}
