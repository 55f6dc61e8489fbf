package memorial

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the court
// palette follows any color scheme: vermilion is whatever red the terminal
// has.
type Theme struct {
	Edict    int // Emperor's messages
	Memorial int // Grand Councilor's messages
	Seal     int // Titles, current session marker
	Error    int // Failed replies
	Muted    int // Status bar, placeholders, timestamps
	CodeBg   int // Foreign Mechanism background
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Edict:    1,
		Memorial: 3,
		Seal:     1,
		Error:    9,
		Muted:    8,
		CodeBg:   0,
		Accent:   3,
	}
}
