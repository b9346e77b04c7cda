package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeatherRoundTrip(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	_, ok, err := s.LoadWeather()
	require.NoError(t, err)
	require.False(t, ok)

	want := Weather{City: "Oslo, Norway", Latitude: 59.91, Longitude: 10.75, Units: "fahrenheit"}
	require.NoError(t, s.SaveWeather(want))

	got, ok, err := s.LoadWeather()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	_, err = os.Stat(s.path() + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestLoadWeatherCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, weatherFile), []byte("{"), 0o600))

	s, err := NewStore(dir)
	require.NoError(t, err)
	_, _, err = s.LoadWeather()
	require.ErrorContains(t, err, "decode weather.json")
}
