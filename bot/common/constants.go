package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorInfo    = 0x3498DB // Blue
	ColorGold    = 0xF1C40F
	ColorTeal    = 0x1ABC9C
	ColorPurple  = 0x9B59B6
)
