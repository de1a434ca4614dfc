// Package pretty draws ASCII junction maps for the text writer.
package pretty

import (
	"fmt"
	"strconv"
	"strings"
)

// Options control the ASCII rendering.
type Options struct {
	// Bar width in columns. If <=0, use default (72).
	Width int

	// Glyphs
	BarGlyph  string // default "="
	TickGlyph string // default "|"
}

// DefaultOptions keeps the usual look.
var DefaultOptions = Options{
	Width:     72,
	BarGlyph:  "=",
	TickGlyph: "|",
}

const linePrefix = "# "

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultOptions.Width
	}
	return o.Width
}

func (o Options) bar() string {
	if o.BarGlyph == "" {
		return DefaultOptions.BarGlyph
	}
	return o.BarGlyph
}

func (o Options) tick() string {
	if o.TickGlyph == "" {
		return DefaultOptions.TickGlyph
	}
	return o.TickGlyph
}

// scale an offset into the printed width (endpoint-preserving)
func scalePos(off, length, width int) int {
	if length <= 1 || width <= 1 {
		return 0
	}
	if off < 0 {
		off = 0
	}
	if off > length-1 {
		off = length - 1
	}
	return (off * (width - 1)) / (length - 1)
}

// Map is what RenderMap draws.
type Map struct {
	Length    int
	Circular  bool
	Positions []int
	Overhangs []string
}

// RenderMap prints the sequence as a bar with one tick per junction and the
// junction numbers underneath. Labels that would collide move to a second
// row; beyond that only the tick is drawn.
func RenderMap(m Map, opt Options) string {
	var b strings.Builder
	if m.Length <= 0 {
		fmt.Fprintf(&b, "%s(map not available: empty sequence)\n", linePrefix)
		return b.String()
	}
	w := opt.width()
	if m.Length < w {
		w = m.Length
	}
	open, closing := "5'-", "-3'"
	if m.Circular {
		open, closing = "o-", "-o"
	}

	bar := make([]string, w)
	for i := range bar {
		bar[i] = opt.bar()
	}
	rows := [2][]byte{[]byte(strings.Repeat(" ", w+4)), []byte(strings.Repeat(" ", w+4))}
	free := [2]int{}
	for k, p := range m.Positions {
		col := scalePos(p, m.Length, w)
		bar[col] = opt.tick()
		label := strconv.Itoa(k + 1)
		for r := range rows {
			if col >= free[r] && col+len(label) <= len(rows[r]) {
				copy(rows[r][col:], label)
				free[r] = col + len(label) + 1
				break
			}
		}
	}

	fmt.Fprintf(&b, "%s%s%s%s  %d bp\n", linePrefix, open, strings.Join(bar, ""), closing, m.Length)
	pad := strings.Repeat(" ", len(open))
	for _, r := range rows {
		if s := strings.TrimRight(string(r), " "); s != "" {
			fmt.Fprintf(&b, "%s%s%s\n", linePrefix, pad, s)
		}
	}
	for k, p := range m.Positions {
		oh := ""
		if k < len(m.Overhangs) {
			oh = m.Overhangs[k]
		}
		fmt.Fprintf(&b, "%s%2d  %-8s @ %d\n", linePrefix, k+1, oh, p)
	}
	b.WriteString("#\n")
	return b.String()
}
