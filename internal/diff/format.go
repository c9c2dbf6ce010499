package diff

import (
	"fmt"
	"strings"
)

// Unified renders the result as a unified diff with the given file labels.
// NoChange renders as the empty string; Create renders every line as an
// addition.
func (r Result) Unified(fromLabel, toLabel string) string {
	if r.Kind == NoChange {
		return ""
	}

	hunks := r.Hunks
	if r.Kind == Create {
		lines := splitLines(r.New)
		hunk := Hunk{OldStart: 0, OldLines: 0, NewStart: 1, NewLines: len(lines)}
		for _, l := range lines {
			hunk.Lines = append(hunk.Lines, Line{Op: OpAdd, Text: l})
		}
		hunks = []Hunk{hunk}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", fromLabel)
	fmt.Fprintf(&b, "+++ %s\n", toLabel)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", spanLabel(h.OldStart, h.OldLines), spanLabel(h.NewStart, h.NewLines))
		for _, l := range h.Lines {
			b.WriteString(prefix(l.Op))
			b.WriteString(l.Text)
			if !strings.HasSuffix(l.Text, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

func spanLabel(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	if count == 0 && start > 0 {
		start--
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func prefix(op Op) string {
	switch op {
	case OpDelete:
		return "-"
	case OpAdd:
		return "+"
	default:
		return " "
	}
}
