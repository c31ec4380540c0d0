package cli

import (
	"errors"
	"strings"

	"github.com/valter-silva-au/supercraft/internal/core"
)

// hintFor returns a follow-up suggestion for the error conditions users can
// act on, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		return "run: supercraft init"
	case errors.Is(err, core.ErrTaskNotFound):
		return "run: supercraft task list"
	case errors.Is(err, core.ErrSnapshotNotFound):
		return "run: supercraft state history"
	case errors.Is(err, core.ErrSpecNotFound):
		return "run: supercraft spec list"
	case errors.Is(err, core.ErrTemplateNotFound):
		return "run: supercraft template list"
	case errors.Is(err, core.ErrInvalidTarget):
		return "pass an explicit target with --to"
	case errors.Is(err, core.ErrStateCorrupt):
		return "restore a snapshot with: supercraft state restore <file>"
	case errors.Is(err, core.ErrAlreadyExists):
		return "choose another name with --filename"
	}
	return ""
}

// FormatError renders err for the terminal, followed by a hint line when
// one applies.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ " + err.Error()))
	if hint := hintFor(err); hint != "" {
		b.WriteString("\n  ")
		b.WriteString(hintStyle.Render(hint))
	}
	return b.String()
}
