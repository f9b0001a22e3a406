package render

import "github.com/charmbracelet/lipgloss"

// Palette is the colour scheme of the chat screen
type Palette struct {
	Name string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// DropTarget highlights the sidebar row under a dragged chat
	DropTarget lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	TokyoNight = Palette{
		Name:       "tokyonight",
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#9ece6a"),
		Accent:     lipgloss.Color("#bb9af7"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
		DropTarget: lipgloss.Color("#2ac3de"),
		Text:       lipgloss.Color("#c0caf5"),
		TextDim:    lipgloss.Color("#565f89"),
		TextMute:   lipgloss.Color("#3b4261"),
	}

	Catppuccin = Palette{
		Name:       "catppuccin",
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),
		Primary:    lipgloss.Color("#89b4fa"),
		Secondary:  lipgloss.Color("#a6e3a1"),
		Accent:     lipgloss.Color("#cba6f7"),
		Warning:    lipgloss.Color("#f9e2af"),
		Error:      lipgloss.Color("#f38ba8"),
		DropTarget: lipgloss.Color("#94e2d5"),
		Text:       lipgloss.Color("#cdd6f4"),
		TextDim:    lipgloss.Color("#6c7086"),
		TextMute:   lipgloss.Color("#45475a"),
	}

	Light = Palette{
		Name:       "light",
		Surface:    lipgloss.Color("#f2f2f2"),
		Border:     lipgloss.Color("#c0c0c0"),
		Primary:    lipgloss.Color("#2f5fd0"),
		Secondary:  lipgloss.Color("#2e8b57"),
		Accent:     lipgloss.Color("#8a3ffc"),
		Warning:    lipgloss.Color("#b8860b"),
		Error:      lipgloss.Color("#c0392b"),
		DropTarget: lipgloss.Color("#0f9d9a"),
		Text:       lipgloss.Color("#1f2328"),
		TextDim:    lipgloss.Color("#6e7781"),
		TextMute:   lipgloss.Color("#a0a7b0"),
	}
)

// Palettes lists the bundled palettes, default first
func Palettes() []Palette {
	return []Palette{TokyoNight, Catppuccin, Light}
}

// PaletteByName returns the named palette, or TokyoNight and false
func PaletteByName(name string) (Palette, bool) {
	for _, p := range Palettes() {
		if p.Name == name {
			return p, true
		}
	}
	return TokyoNight, false
}
