// Package theme holds the TUI color palettes.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps color roles to terminal colors.
type Theme struct {
	Name string

	// Canvas and panels.
	Background, Surface, SurfaceHover lipgloss.Color
	Border, BorderAccent              lipgloss.Color

	// Text, from least to most prominent.
	TextDim, TextMuted, TextPrimary lipgloss.Color

	Accent, AccentBright lipgloss.Color

	// Signal colors. Green/Yellow/Orange/Red double as the budget bands.
	Green, GreenBright, Yellow, Orange, Red lipgloss.Color
	Blue, Cyan                              lipgloss.Color
}

// Moss is the default: dark earth tones with a lichen accent.
var Moss = Theme{
	Name:       "moss",
	Background: "#11140F", Surface: "#1A1E17", SurfaceHover: "#262B21",
	Border: "#3A4133", BorderAccent: "#8DB36B",
	TextDim: "#5A6352", TextMuted: "#93A088", TextPrimary: "#EEF2E6",
	Accent: "#8DB36B", AccentBright: "#B2D68F",
	Green: "#6FAF5A", GreenBright: "#97D27F", Yellow: "#D9B44A", Orange: "#D98A3D", Red: "#C9564A",
	Blue: "#5E8FB8", Cyan: "#5FB3A6",
}

// Ember is warm charcoal with a coal-orange accent.
var Ember = Theme{
	Name:       "ember",
	Background: "#141110", Surface: "#1F1A18", SurfaceHover: "#2C2522",
	Border: "#473C36", BorderAccent: "#E58A4E",
	TextDim: "#675A52", TextMuted: "#A8978B", TextPrimary: "#F6EDE4",
	Accent: "#E58A4E", AccentBright: "#F4AE7D",
	Green: "#8FA855", GreenBright: "#B0C777", Yellow: "#E3BC55", Orange: "#E58A4E", Red: "#D9534F",
	Blue: "#6C8FB3", Cyan: "#6DB0A3",
}

// Glacier is a cool blue palette.
var Glacier = Theme{
	Name:       "glacier",
	Background: "#0F1419", Surface: "#172029", SurfaceHover: "#223040",
	Border: "#34465A", BorderAccent: "#6CB6E8",
	TextDim: "#4F6377", TextMuted: "#8EA4B8", TextPrimary: "#E5F0FA",
	Accent: "#6CB6E8", AccentBright: "#9DD2F5",
	Green: "#7CC49A", GreenBright: "#A3DDBA", Yellow: "#E6CB6E", Orange: "#EB9F62", Red: "#E8707A",
	Blue: "#6CB6E8", Cyan: "#7FD6DB",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:       "terminal",
	Background: "0", Surface: "0", SurfaceHover: "8",
	Border: "8", BorderAccent: "2",
	TextDim: "8", TextMuted: "7", TextPrimary: "15",
	Accent: "2", AccentBright: "10",
	Green: "2", GreenBright: "10", Yellow: "11", Orange: "3", Red: "1",
	Blue: "4", Cyan: "6",
}

// All lists the palettes in display order.
var All = []Theme{Moss, Ember, Glacier, Terminal}

// Active is the palette components render with.
var Active = Moss

// ByName looks a palette up by name. Unknown names get Moss.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Moss
}

// SetActive switches the active palette.
func SetActive(name string) {
	Active = ByName(name)
}

// Names returns every palette name.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, t := range All {
		names = append(names, t.Name)
	}
	return names
}
