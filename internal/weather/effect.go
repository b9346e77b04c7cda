package weather

// Effect is a side effect declared by the reducer.
type Effect interface {
	isEffect()
}

type (
	// StartSubscriptions registers the tick and refresh intervals.
	StartSubscriptions struct{}
	// FetchWeather loads current conditions for Location.
	FetchWeather struct{ Location Location }
	// SearchCities runs a debounced geocoding lookup.
	SearchCities struct{ Query string }
	// CancelSearch drops any pending or running lookup.
	CancelSearch struct{}
	// SavePreferences remembers the location and units.
	SavePreferences struct {
		Location Location
		Units    Units
	}
)

func (StartSubscriptions) isEffect() {}
func (FetchWeather) isEffect()       {}
func (SearchCities) isEffect()       {}
func (CancelSearch) isEffect()       {}
func (SavePreferences) isEffect()    {}
