package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tm "github.com/nsf/termbox-go"

	"github.com/dioptra-io/iris-converters/trace"
)

// Version is shown in the title bar.
var Version = "UNKNOWN"

const (
	botScnH   = 8
	minWidth  = 80
	minHeight = 20
	hdrRows   = 3 // border, column names, separator
)

// Viewer browses traceroutes in the terminal, one traceroute per page, with
// the log messages and errors in two panes at the bottom. Traceroutes can be
// added while the viewer runs.
type Viewer struct {
	h, w                               int
	resX, resY, resW                   int
	barX, barW                         int
	msgX, msgY, msgW                   int
	botVSplitX, botVSplitY, botVSplitH int
	errX, errY, errW                   int
	res                                table
	msg                                table
	err                                table

	mu          sync.Mutex
	traceroutes []trace.Traceroute
	cur         int
	offset      int
	msgRing     []string
	errRing     []string
}

func NewViewer() (*Viewer, error) {
	err := tm.Init()
	if err != nil {
		return nil, err
	}

	w, h := tm.Size()
	if h < minHeight || w < minWidth {
		tm.Close()
		return nil, fmt.Errorf("terminal too small (%dwx%dh), must be at least %dhx%dw", w, h, minHeight, minWidth)
	}

	tm.SetInputMode(tm.InputEsc)
	tm.Clear(tm.ColorDefault, tm.ColorDefault)
	tm.Sync()
	tm.Flush()
	hideCursor()
	return newViewer(w, h), nil
}

func newViewer(w, h int) *Viewer {
	v := &Viewer{
		msgRing: make([]string, botScnH-1),
		errRing: make([]string, botScnH-1),
	}
	v.layout(w, h)
	return v
}

func hideCursor() {
	tm.SetCursor(0, 0)
}

// layout places the panes for a w x h terminal. The rtt bars only show on
// wide terminals.
func (v *Viewer) layout(w, h int) {
	v.h = h
	v.w = w
	v.barW = 0
	if w >= 120 {
		v.barW = 8
	}
	v.resX = 0
	v.resY = 3
	v.resW = w - v.barW
	v.barX = v.resW

	const flowW, ttlW, rttW, icmpW, sizeW = 11, 3, 10, 14, 5
	cols := len(ReplyHeader)
	remaining := v.resW - (cols + 1) - (flowW + ttlW + rttW + icmpW + sizeW)
	addrW := min(39, remaining*2/3)
	mplsW := remaining - addrW
	v.res = table{
		ccount:  cols,
		cwidth:  []int{flowW, ttlW, addrW, rttW, icmpW, sizeW, mplsW},
		x:       v.resX,
		y:       v.resY,
		justify: []int{tableJustifyLeft, tableJustifyRight, tableJustifyLeft, tableJustifyRight, tableJustifyLeft, tableJustifyRight, tableJustifyLeft},
		border:  tableNoBorder,
	}

	v.msgX = 0
	v.msgY = h - botScnH + 1
	v.msgW = (w+1)/2 + 1
	v.botVSplitX = v.msgW
	v.botVSplitY = h - botScnH
	v.botVSplitH = botScnH - 1
	v.errX = v.botVSplitX + 1
	v.errY = h - botScnH + 1
	v.errW = w - v.msgW - 1
	v.msg = table{ccount: 1, cwidth: []int{v.msgW}, x: v.msgX, y: v.msgY, justify: []int{tableJustifyLeft}, border: tableNoBorder}
	v.err = table{ccount: 1, cwidth: []int{v.errW}, x: v.errX, y: v.errY, justify: []int{tableJustifyLeft}, border: tableNoBorder}
}

// pageRows is the number of replies shown at once.
func (v *Viewer) pageRows() int {
	return max(1, v.h-botScnH-v.resY-hdrRows)
}

// Add appends a traceroute to the pages.
func (v *Viewer) Add(t trace.Traceroute) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.traceroutes = append(v.traceroutes, t)
}

func (v *Viewer) AddInfoMsg(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	pushRing(v.msgRing, msg)
}

func (v *Viewer) AddErrorMsg(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	pushRing(v.errRing, msg)
}

func pushRing(ring []string, msg string) {
	copy(ring, ring[1:])
	ring[len(ring)-1] = msg
}

// move changes the current traceroute by delta, within bounds.
func (v *Viewer) move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = clamp(v.cur+delta, 0, len(v.traceroutes)-1)
	v.offset = 0
}

// scroll moves the replies of the current traceroute by delta rows.
func (v *Viewer) scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	if v.cur < len(v.traceroutes) {
		n = v.traceroutes[v.cur].ReplyCount()
	}
	v.offset = clamp(v.offset+delta, 0, n-v.pageRows())
}

func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

type row struct {
	cells []string
	rtt   float64
	fg    tm.Attribute
}

// rows formats the replies of the current traceroute. Callers hold mu.
func (v *Viewer) rows() []row {
	if v.cur >= len(v.traceroutes) {
		return nil
	}
	t := &v.traceroutes[v.cur]
	v6 := !trace.IsIPv4(t.DstAddr)
	var rows []row
	for i := range t.Flows {
		f := &t.Flows[i]
		for j := range f.Replies {
			r := &f.Replies[j]
			fg := tm.ColorDefault
			switch {
			case r.Addr == trace.Unspecified:
				fg = tm.ColorYellow
			case r.Addr == t.DstAddr:
				fg = tm.ColorGreen
			}
			rows = append(rows, row{cells: ReplyRow(f, r, v6), rtt: r.RTT, fg: fg})
		}
	}
	return rows
}

func (v *Viewer) Paint() {
	tm.Clear(tm.ColorDefault, tm.ColorDefault)
	defer tm.Flush()
	v.mu.Lock()
	defer v.mu.Unlock()

	printCenterText(0, 0, v.w, "iris-converters (Version: "+Version+")", tm.ColorBlack, tm.ColorWhite)
	title := "Waiting for traceroutes"
	if v.cur < len(v.traceroutes) {
		title = fmt.Sprintf("[%d/%d] %s", v.cur+1, len(v.traceroutes), TracerouteTitle(&v.traceroutes[v.cur]))
	}
	printText(0, 1, v.w, title, tm.ColorWhite, tm.ColorDefault)
	printHLineText(v.resX, v.resY-1, v.w, "Replies")

	v.res.cr = 0
	v.res.addTblHdr()
	v.res.addTblRow(ReplyHeader, tm.ColorWhite|tm.AttrBold)
	v.res.addTblSpr()
	rows := v.rows()
	end := min(len(rows), v.offset+v.pageRows())
	for _, r := range rows[min(v.offset, end):end] {
		if v.barW > 0 {
			printRTTBar(v.barX, v.res.y+v.res.cr, v.barW, r.rtt, tm.ColorCyan)
		}
		v.res.addTblRow(r.cells, r.fg)
	}

	printHLineText(v.msgX, v.msgY-1, v.msgW, "Messages")
	printHLineText(v.errX, v.errY-1, v.errW, "Errors")
	v.msg.cr = 0
	for _, s := range v.msgRing {
		v.msg.addTblRow([]string{s}, tm.ColorDefault)
	}
	v.err.cr = 0
	for _, s := range v.errRing {
		v.err.addTblRow([]string{s}, tm.ColorRed)
	}
	printVLine(v.botVSplitX, v.botVSplitY, v.botVSplitH)

	help := fmt.Sprintf("%c %c traceroute   PgUp PgDn scroll   q quit", symbols[symbolLeftArrow], symbols[symbolRightArrow])
	printText(0, v.h-1, v.w, help, tm.ColorBlack, tm.ColorWhite)
}

// Run paints the viewer and handles keys until the user quits or ctx is
// done. The screen is repainted every second to pick up added traceroutes.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tm.Event)
	done := make(chan struct{})
	defer close(done)
	defer tm.Interrupt()
	go func() {
		for {
			ev := tm.PollEvent()
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	paintTicker := time.NewTicker(time.Second)
	defer paintTicker.Stop()
	v.Paint()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-paintTicker.C:
		case ev := <-events:
			switch ev.Type {
			case tm.EventKey:
				switch {
				case ev.Key == tm.KeyEsc || ev.Key == tm.KeyCtrlC || ev.Ch == 'q':
					return nil
				case ev.Key == tm.KeyArrowRight || ev.Ch == 'n':
					v.move(1)
				case ev.Key == tm.KeyArrowLeft || ev.Ch == 'p':
					v.move(-1)
				case ev.Key == tm.KeyArrowDown || ev.Ch == 'j':
					v.scroll(1)
				case ev.Key == tm.KeyArrowUp || ev.Ch == 'k':
					v.scroll(-1)
				case ev.Key == tm.KeyPgdn || ev.Key == tm.KeySpace:
					v.scroll(v.pageRows())
				case ev.Key == tm.KeyPgup:
					v.scroll(-v.pageRows())
				}
			case tm.EventResize:
				v.mu.Lock()
				v.layout(ev.Width, ev.Height)
				v.mu.Unlock()
			case tm.EventError:
				return ev.Err
			}
		}
		v.Paint()
	}
}

func (v *Viewer) Close() {
	tm.Close()
}
