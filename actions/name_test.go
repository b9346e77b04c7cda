package actions

import "testing"

type tick struct{}

type didLoad struct{ Temp int }

func (didLoad) Name() string { return "WeatherDidLoad" }

func (d didLoad) Params() string { return "temp" }

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "named", in: didLoad{}, want: "WeatherDidLoad"},
		{name: "struct_type", in: tick{}, want: "tick"},
		{name: "pointer", in: &tick{}, want: "tick"},
		{name: "builtin", in: 42, want: "int"},
		{name: "nil", in: nil, want: "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.in); got != tt.want {
				t.Fatalf("Name()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	if got := Params(didLoad{Temp: 3}); got != "temp" {
		t.Fatalf("Params(parameterized)=%q", got)
	}
	if got := Params(tick{}); got != "" {
		t.Fatalf("Params(empty struct)=%q, want empty", got)
	}
	type query struct{ Q string }
	if got := Params(query{Q: "lon"}); got != "{Q:lon}" {
		t.Fatalf("Params(struct)=%q", got)
	}
}

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"WeatherDidLoad":    "weather",
		"SearchQueryChange": "search",
		"UiToggleUnits":     "ui",
		"Tick":              "",
		"":                  "",
	}
	for in, want := range tests {
		if got := Category(in); got != want {
			t.Errorf("Category(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestIsAsyncResult(t *testing.T) {
	tests := map[string]bool{
		"WeatherDidLoad":  true,
		"DidConnect":      true,
		"SearchDidError":  true,
		"WeatherFetch":    false,
		"SearchDidactics": false,
	}
	for in, want := range tests {
		if got := IsAsyncResult(in); got != want {
			t.Errorf("IsAsyncResult(%q)=%v, want %v", in, got, want)
		}
	}
}
