// Package console prints canonical traceroutes as aligned text tables.
package console

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/ui"
)

// rightAligned marks the numeric columns of ui.ReplyHeader.
var rightAligned = map[int]bool{1: true, 3: true, 5: true}

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write prints a title line for t followed by one row per reply.
func (w *Writer) Write(t *trace.Traceroute) error {
	v6 := !trace.IsIPv4(t.DstAddr)
	rows := [][]string{ui.ReplyHeader}
	for i := range t.Flows {
		f := &t.Flows[i]
		for j := range f.Replies {
			rows = append(rows, ui.ReplyRow(f, &f.Replies[j], v6))
		}
	}

	widths := make([]int, len(ui.ReplyHeader))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	w.w.WriteString(ui.TracerouteTitle(t))
	w.w.WriteByte('\n')
	cells := make([]string, len(widths))
	for _, row := range rows {
		for i, cell := range row {
			if rightAligned[i] {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		w.w.WriteString("  ")
		w.w.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		w.w.WriteByte('\n')
	}
	w.w.WriteByte('\n')
	return w.w.Flush()
}
