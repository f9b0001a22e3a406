package render

// Markdown style names understood by the renderer
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleTokyoNight = "tokyonight"
	StyleDracula    = "dracula"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// glamourStyle maps our style names onto glamour's standard style names.
// Anything else is handed to glamour as a style file path.
func glamourStyle(name string) string {
	switch name {
	case StyleTokyoNight:
		return "tokyo-night"
	default:
		return name
	}
}

// IsBuiltinStyle reports whether name is one of the bundled styles
func IsBuiltinStyle(name string) bool {
	for _, s := range StyleNames() {
		if s == name {
			return true
		}
	}
	return false
}

// StyleNames lists the bundled markdown styles
func StyleNames() []string {
	return []string{StyleDark, StyleLight, StyleTokyoNight, StyleDracula, StyleNoTTY, StyleASCII}
}
