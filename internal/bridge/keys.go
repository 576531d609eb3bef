package bridge

import "strings"

// symbolicKeys are the tmux key names the bridge accepts as-is. Anything
// not in this set (and not a C-/M- chord) is sent as literal text.
var symbolicKeys = map[string]struct{}{
	"Enter":  {},
	"Tab":    {},
	"Escape": {},
	"Space":  {},
	"Up":     {},
	"Down":   {},
	"Left":   {},
	"Right":  {},
	"BSpace": {},
	"PgUp":   {},
	"PgDn":   {},
	"Home":   {},
	"End":    {},
	"DC":     {},
}

// IsSymbolic reports whether keys should be sent as a tmux key name rather
// than literal text. C- and M- chords pass through to tmux unchanged.
func IsSymbolic(keys string) bool {
	if _, ok := symbolicKeys[keys]; ok {
		return true
	}
	return strings.HasPrefix(keys, "C-") || strings.HasPrefix(keys, "M-")
}
