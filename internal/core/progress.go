package core

import "strings"

const (
	progressCells  = 10
	progressFilled = "█"
	progressEmpty  = "░"
)

// FormatProgress renders percent as a ten-cell bar. Filled cells are
// round(percent/10), half up, clamped to the bar width.
func FormatProgress(percent int) string {
	filled := roundHalfUp(float64(percent) / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > progressCells {
		filled = progressCells
	}
	return strings.Repeat(progressFilled, filled) + strings.Repeat(progressEmpty, progressCells-filled)
}
