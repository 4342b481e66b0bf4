package cli

import "testing"

func withColor(t *testing.T, on bool) {
	t.Helper()
	old := colorEnabled
	colorEnabled = on
	t.Cleanup(func() { colorEnabled = old })
}

func TestColorFunctions(t *testing.T) {
	withColor(t, true)

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"Green", Green, "\033[32mx\033[0m"},
		{"Yellow", Yellow, "\033[33mx\033[0m"},
		{"Red", Red, "\033[31mx\033[0m"},
		{"Bold", Bold, "\033[1mx\033[0m"},
		{"Dim", Dim, "\033[2mx\033[0m"},
	}
	for _, tt := range tests {
		if got := tt.fn("x"); got != tt.want {
			t.Errorf("%s(x) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestColorDisabled(t *testing.T) {
	withColor(t, false)

	if got := Red("x"); got != "x" {
		t.Errorf("Red with NO_COLOR = %q", got)
	}
	if got := LinkState(true); got != "up" {
		t.Errorf("LinkState(true) = %q", got)
	}
	if got := LinkState(false); got != "down" {
		t.Errorf("LinkState(false) = %q", got)
	}
	if got := Result(false); got != "FAIL" {
		t.Errorf("Result(false) = %q", got)
	}
}

func TestOptional(t *testing.T) {
	withColor(t, false)

	tests := []struct {
		v    string
		ok   bool
		want string
	}{
		{"10.0.0.1", true, "10.0.0.1"},
		{"", true, "-"},
		{"stale", false, "-"},
	}
	for _, tt := range tests {
		if got := Optional(tt.v, tt.ok); got != tt.want {
			t.Errorf("Optional(%q, %v) = %q, want %q", tt.v, tt.ok, got, tt.want)
		}
	}
}
