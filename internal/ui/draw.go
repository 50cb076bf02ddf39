package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Reverse(true).Bold(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleEnabled  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleDim      = tcell.StyleDefault.Dim(true)
)

func (b *Browser) draw() {
	b.screen.Clear()
	w, h := b.screen.Size()
	if w <= 0 || h <= 0 {
		b.screen.Show()
		return
	}
	if b.surface != nil {
		b.drawSurface(w, h)
	} else {
		b.drawList(w, h)
	}
	b.screen.Show()
}

func (b *Browser) drawList(w, h int) {
	b.drawLine(0, w, styleTitle, " keel plugins  "+b.mgr.Dir())

	infoTop := h - 8
	if infoTop < 2 {
		infoTop = 2
	}
	for i, info := range b.infos {
		y := 2 + i
		if y >= infoTop {
			break
		}
		marker := "[off]"
		markerStyle := styleDim
		if info.Enabled {
			marker = "[on] "
			markerStyle = styleEnabled
		}
		rowStyle := styleDefault
		if i == b.selected {
			rowStyle = styleSelected
			markerStyle = styleSelected
		}

		x := b.drawText(1, y, w-1, markerStyle, marker)
		line := fmt.Sprintf(" %s (%s)", info.DisplayName, info.Identifier)
		if info.Builtin {
			line += " [built-in]"
		}
		x += b.drawText(1+x, y, w-1-x, rowStyle, line)
		if info.LastError != nil {
			b.drawText(1+x+1, y, w-2-x, styleError, "!")
		}
	}
	if len(b.infos) == 0 {
		b.drawText(1, 2, w-1, styleDim, "no plugins in "+b.mgr.Dir())
	}

	if infoTop > 2 {
		b.drawLine(infoTop, w, styleDim, strings.Repeat("─", w))
		b.drawInfo(infoTop+1, w, h)
	}

	b.drawLine(h-1, w, styleDim, " enter toggle   e settings   r rescan   q quit")
}

func (b *Browser) drawInfo(top, w, h int) {
	info, ok := b.selectedInfo()
	if !ok {
		return
	}
	source := info.Path
	if info.Builtin {
		source = "built into the editor"
	}
	lines := []struct {
		label string
		value string
		style tcell.Style
	}{
		{"plugin", fmt.Sprintf("%s  %s", info.DisplayName, info.Version), styleDefault},
		{"author", info.Author, styleDefault},
		{"source", source, styleDefault},
		{"hooks", strings.Join(info.Hooks, ", "), styleDefault},
		{"about", info.Description, styleDim},
	}
	y := top
	for _, line := range lines {
		if y >= h-2 || line.value == "" {
			y++
			continue
		}
		x := b.drawText(1, y, w-1, styleDim, line.label+": ")
		b.drawText(1+x, y, w-1-x, line.style, line.value)
		y++
	}

	status := b.status
	statusStyle := styleDefault
	if status == "" && info.LastError != nil {
		status = info.LastError.Error()
		statusStyle = styleError
	}
	if status == "" && len(b.scanErrs) > 0 {
		status = fmt.Sprintf("%d conflicting plugin file(s) ignored", len(b.scanErrs))
		statusStyle = styleError
	}
	if status != "" && h-2 >= top {
		b.drawText(1, h-2, w-1, statusStyle, status)
	}
}

func (b *Browser) drawSurface(w, h int) {
	b.drawLine(0, w, styleTitle, " settings  "+b.surface.Identifier)

	lines := surfaceLines("", b.surface.Content)
	y := 2
	for _, line := range lines {
		if y >= h-2 {
			b.drawText(1, y, w-1, styleDim, "...")
			break
		}
		b.drawText(1, y, w-1, styleDefault, line)
		y++
	}

	b.drawLine(h-1, w, styleDim, " q close")
}

// drawLine paints a full row, filling the remainder with the style's
// background.
func (b *Browser) drawLine(y, w int, style tcell.Style, text string) {
	x := b.drawText(0, y, w, style, text)
	for ; x < w; x++ {
		b.screen.SetContent(x, y, ' ', nil, style)
	}
}

// drawText writes text at (x, y), truncating to max display cells, and
// returns the number of cells used.
func (b *Browser) drawText(x, y, max int, style tcell.Style, text string) int {
	if max <= 0 {
		return 0
	}
	text = runewidth.Truncate(text, max, "…")
	col := x
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > x+max {
			break
		}
		b.screen.SetContent(col, y, r, nil, style)
		col += rw
	}
	return col - x
}

// surfaceLines flattens an opaque settings surface into display lines.
// Maps render as sorted key/value pairs, lists as dashed items, everything
// else through fmt.
func surfaceLines(indent string, v any) []string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			switch child := t[k].(type) {
			case map[string]any, []any:
				out = append(out, indent+k+":")
				out = append(out, surfaceLines(indent+"  ", child)...)
			default:
				out = append(out, fmt.Sprintf("%s%s: %v", indent, k, child))
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			switch child := item.(type) {
			case map[string]any, []any:
				out = append(out, indent+"-")
				out = append(out, surfaceLines(indent+"  ", child)...)
			default:
				out = append(out, fmt.Sprintf("%s- %v", indent, child))
			}
		}
		return out
	case nil:
		return nil
	default:
		return []string{indent + fmt.Sprint(t)}
	}
}
