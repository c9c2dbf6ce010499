package diff

import (
	"fmt"
	"strings"
)

// Apply re-applies the result's hunks to the given old text and returns the
// reconstructed new text. For an Update result computed from (old, new),
// Apply(old) returns new exactly. It fails when the hunks do not match the
// given text.
func (r Result) Apply(old string) (string, error) {
	switch r.Kind {
	case NoChange:
		return old, nil
	case Create:
		return r.New, nil
	}

	oldLines := splitLines(old)
	var out strings.Builder
	cursor := 0 // index into oldLines of the next unconsumed line

	for _, h := range r.Hunks {
		if h.OldStart-1 < cursor {
			return "", fmt.Errorf("diff: hunk at old line %d overlaps previous hunk", h.OldStart)
		}
		for cursor < h.OldStart-1 {
			if cursor >= len(oldLines) {
				return "", fmt.Errorf("diff: hunk at old line %d is beyond end of input", h.OldStart)
			}
			out.WriteString(oldLines[cursor])
			cursor++
		}

		for _, l := range h.Lines {
			switch l.Op {
			case OpContext:
				if cursor >= len(oldLines) || oldLines[cursor] != l.Text {
					return "", fmt.Errorf("diff: context mismatch at old line %d", cursor+1)
				}
				out.WriteString(l.Text)
				cursor++
			case OpDelete:
				if cursor >= len(oldLines) || oldLines[cursor] != l.Text {
					return "", fmt.Errorf("diff: delete mismatch at old line %d", cursor+1)
				}
				cursor++
			case OpAdd:
				out.WriteString(l.Text)
			}
		}
	}

	for cursor < len(oldLines) {
		out.WriteString(oldLines[cursor])
		cursor++
	}

	return out.String(), nil
}
