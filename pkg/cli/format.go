// Package cli provides shared formatting helpers for the newtmn CLI.
package cli

import (
	"os"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green wraps s in ANSI green.
func Green(s string) string { return paint("32", s) }

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string { return paint("33", s) }

// Red wraps s in ANSI red.
func Red(s string) string { return paint("31", s) }

// Bold wraps s in ANSI bold.
func Bold(s string) string { return paint("1", s) }

// Dim wraps s in ANSI dim.
func Dim(s string) string { return paint("2", s) }

// LinkState renders a port's oper state.
func LinkState(up bool) string {
	if up {
		return Green("up")
	}
	return Red("down")
}

// Optional renders an optional value, or a dim dash when absent.
func Optional(v string, ok bool) string {
	if !ok || v == "" {
		return Dim("-")
	}
	return v
}

// Result renders an operation outcome for audit listings.
func Result(success bool) string {
	if success {
		return Green("ok")
	}
	return Red("FAIL")
}
