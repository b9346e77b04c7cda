package weather

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tuidispatch/internal/tui"
)

// Key scopes reported with each frame.
const (
	ScopeMain   = "main"
	ScopeSearch = "search"
)

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

var (
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6")).Padding(1, 3)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	locationStyle = lipgloss.NewStyle().Bold(true)
	tempStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	searchStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(44)
)

// Render draws s. The frame's scope follows the search overlay.
func Render(s *State) tui.Frame {
	height := max(s.Height-1, 1)
	body := lipgloss.Place(s.Width, height, lipgloss.Center, lipgloss.Center, panelStyle.Render(renderPanel(s)))
	if !s.Search.Open {
		return tui.Frame{View: body, Scope: ScopeMain}
	}
	return tui.Frame{
		View:  tui.Overlay(body, renderSearch(s), s.Width, height),
		Scope: ScopeSearch,
	}
}

// Spinner returns the loading indicator for the current tick.
func (s *State) Spinner() string {
	return spinnerFrames[(s.TickCount/2)%len(spinnerFrames)]
}

func renderPanel(s *State) string {
	lines := []string{
		headerStyle.Render("☁ Weather"),
		"",
		locationStyle.Render(s.Location.Name),
		dimStyle.Render(fmt.Sprintf("%.2f, %.2f", s.Location.Lat, s.Location.Lon)),
		"",
	}
	switch {
	case s.Err != "":
		lines = append(lines, errStyle.Render("⚠ "+s.Err), dimStyle.Render("press r to retry"))
	case s.Weather == nil && s.Loading:
		lines = append(lines, headerStyle.Render(s.Spinner())+" fetching weather…")
	case s.Weather == nil:
		lines = append(lines, dimStyle.Render("press r to fetch weather"))
	default:
		w := s.Weather
		temp := tempStyle.Render(s.Units.Format(w.Temperature))
		if s.Animating() {
			temp += " " + headerStyle.Render(s.Spinner())
		}
		lines = append(lines,
			temp,
			w.Description,
			dimStyle.Render(fmt.Sprintf("wind %.1f km/h", w.WindSpeed)),
		)
		if !w.ObservedAt.IsZero() {
			lines = append(lines, dimStyle.Render("observed "+w.ObservedAt.Format("15:04")))
		}
	}
	return strings.Join(lines, "\n")
}

func renderSearch(s *State) string {
	q := s.Search
	lines := []string{headerStyle.Render("Search city"), "> " + q.Query + "▏", ""}
	switch {
	case q.Err != "":
		lines = append(lines, errStyle.Render(q.Err))
	case q.Loading:
		lines = append(lines, headerStyle.Render(s.Spinner())+" searching…")
	case strings.TrimSpace(q.Query) == "":
		lines = append(lines, dimStyle.Render("type a city name"))
	case len(q.Results) == 0:
		lines = append(lines, dimStyle.Render("no matches"))
	}
	if !q.Loading {
		for i, loc := range q.Results {
			line := tui.Truncate(loc.Name, 40)
			if i == q.Selected {
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}
	return searchStyle.Render(strings.Join(lines, "\n"))
}
