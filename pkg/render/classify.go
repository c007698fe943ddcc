package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xhad/guidegen/pkg/document"
)

var numberedPrefix = regexp.MustCompile(`^(\d+)\.\s`)

// Line is the classification of one source line.
type Line struct {
	Kind   document.BlockKind
	Level  int // heading level
	Number int // numbered list position
	Text   string
}

// Classify assigns a line to the first matching kind: blank, "# ", "## ",
// "### ", "- " or "* ", "N. ", then plain paragraph. Leading whitespace is
// ignored and the marker is stripped from Text.
func Classify(raw string) Line {
	s := strings.TrimLeft(strings.TrimRight(raw, "\r"), " \t")

	switch {
	case strings.TrimSpace(s) == "":
		return Line{Kind: document.KindSpacer}
	case strings.HasPrefix(s, "# "):
		return Line{Kind: document.KindHeading, Level: 1, Text: strings.TrimSpace(s[2:])}
	case strings.HasPrefix(s, "## "):
		return Line{Kind: document.KindHeading, Level: 2, Text: strings.TrimSpace(s[3:])}
	case strings.HasPrefix(s, "### "):
		return Line{Kind: document.KindHeading, Level: 3, Text: strings.TrimSpace(s[4:])}
	case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "* "):
		return Line{Kind: document.KindBullet, Text: strings.TrimSpace(s[2:])}
	}

	if m := numberedPrefix.FindStringSubmatch(s); m != nil {
		// digits too long for an int keep the item numbered with no position
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 0
		}
		return Line{Kind: document.KindNumbered, Number: n, Text: strings.TrimSpace(s[len(m[0]):])}
	}

	return Line{Kind: document.KindParagraph, Text: strings.TrimSpace(s)}
}

// SplitBold splits text into runs at "**" pairs, matched left to right.
// An unmatched trailing "**" stays literal and empty runs are dropped.
func SplitBold(text string) []document.Run {
	var runs []document.Run
	add := func(s string, bold bool) {
		if s != "" {
			runs = append(runs, document.Run{Text: s, Bold: bold})
		}
	}

	rest := text
	for {
		open := strings.Index(rest, "**")
		if open < 0 {
			break
		}
		end := strings.Index(rest[open+2:], "**")
		if end < 0 {
			break
		}
		end += open + 2

		add(rest[:open], false)
		add(rest[open+2:end], true)
		rest = rest[end+2:]
	}
	add(rest, false)

	return runs
}

// splitLines splits text on newlines. A trailing newline does not start an
// extra empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
