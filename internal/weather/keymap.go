package weather

import "github.com/jask/tuidispatch/internal/tui"

// KeyMap returns the key bindings of the weather application.
func KeyMap() *tui.KeyMap[Action] {
	k := tui.NewKeyMap[Action]()
	k.Bind(tui.ScopeGlobal, Quit{}, []string{"q", "ctrl+c"}, "quit")

	k.Bind(ScopeMain, WeatherFetch{}, []string{"r"}, "refresh")
	k.Bind(ScopeMain, UiToggleUnits{}, []string{"u"}, "units")
	k.Bind(ScopeMain, SearchOpen{}, []string{"/"}, "search")

	k.Bind(ScopeSearch, SearchClose{}, []string{"esc"}, "close")
	k.Bind(ScopeSearch, SearchSelect{}, []string{"enter"}, "select")
	k.Bind(ScopeSearch, SearchMove{Delta: -1}, []string{"up", "ctrl+p"}, "up")
	k.Bind(ScopeSearch, SearchMove{Delta: 1}, []string{"down", "ctrl+n"}, "down")
	k.Bind(ScopeSearch, SearchBackspace{}, []string{"backspace"}, "delete")
	k.TextInput(ScopeSearch, func(text string) Action { return SearchInput{Text: text} })
	return k
}

// Resize maps a terminal size to an action.
func Resize(width, height int) (Action, bool) {
	return UiTerminalResize{Width: width, Height: height}, true
}
