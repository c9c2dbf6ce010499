// Package diff compares an existing workflow document against freshly
// rendered text and produces a structured, line-based change report.
//
// Hunks are computed with a longest-common-subsequence alignment (difflib's
// SequenceMatcher), which keeps matched lines close to their original
// positions so repeated runs on unrelated edits produce stable hunk layouts.
// The package is pure: no I/O, no side effects.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind tags the outcome of a comparison.
type Kind int

const (
	// NoChange means the existing document is byte-identical to the rendered one.
	NoChange Kind = iota

	// Create means no existing document was present.
	Create

	// Update means the documents differ; Hunks describes the edits.
	Update
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case NoChange:
		return "no-change"
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// Op tags a single line within a hunk.
type Op int

const (
	// OpContext is an unchanged line shown for context.
	OpContext Op = iota

	// OpDelete is a line removed from the existing document.
	OpDelete

	// OpAdd is a line added by the rendered document.
	OpAdd
)

// Line is one line of a hunk.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a contiguous block of added, removed, and context lines.
// Start positions are 1-based, matching unified diff conventions.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result is the structured change report produced by Compute.
type Result struct {
	Kind  Kind
	Old   string
	New   string
	Hunks []Hunk
}

// contextLines is the number of unchanged lines kept around each edit.
const contextLines = 3

// Compute compares the existing document text, if any, against the rendered
// text. A nil existing pointer means no document was present.
func Compute(existing *string, rendered string) Result {
	if existing == nil {
		return Result{Kind: Create, New: rendered}
	}
	if *existing == rendered {
		return Result{Kind: NoChange, Old: *existing, New: rendered}
	}

	oldLines := splitLines(*existing)
	newLines := splitLines(rendered)

	matcher := difflib.NewMatcher(oldLines, newLines)

	var hunks []Hunk
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		hunk := Hunk{
			OldStart: group[0].I1 + 1,
			OldLines: group[len(group)-1].I2 - group[0].I1,
			NewStart: group[0].J1 + 1,
			NewLines: group[len(group)-1].J2 - group[0].J1,
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, l := range oldLines[op.I1:op.I2] {
					hunk.Lines = append(hunk.Lines, Line{Op: OpContext, Text: l})
				}
			case 'r', 'd':
				for _, l := range oldLines[op.I1:op.I2] {
					hunk.Lines = append(hunk.Lines, Line{Op: OpDelete, Text: l})
				}
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				for _, l := range newLines[op.J1:op.J2] {
					hunk.Lines = append(hunk.Lines, Line{Op: OpAdd, Text: l})
				}
			}
		}
		hunks = append(hunks, hunk)
	}

	return Result{Kind: Update, Old: *existing, New: rendered, Hunks: hunks}
}

// splitLines splits text into lines that retain their trailing newline, so
// joining the pieces reproduces the input byte-for-byte. Empty text yields no
// lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
