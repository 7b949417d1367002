package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds bookmark list dimensions.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for the list.
	// Accounts for: app padding (1) + header (2) + status (1) + help bar (2) = 6
	HeightReduction int

	// MinHeight is the minimum list height in lines.
	MinHeight int

	// LinesPerItem is the number of lines one bookmark occupies
	// (title, url/date line).
	LinesPerItem int

	// ContentPadding is subtracted from terminal width for item rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	URLCharLimit    int
	SearchCharLimit int

	// Width is the display width of form inputs.
	Width int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			HeightReduction: 6,
			MinHeight:       4,
			LinesPerItem:    2,
			ContentPadding:  6,
		},
		Modal: ModalConfig{
			WidthPercent: 60,
			MinWidth:     30,
			MaxWidth:     80,
		},
		Input: InputConfig{
			TitleCharLimit:  256,
			URLCharLimit:    2048,
			SearchCharLimit: 100,
			Width:           40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
