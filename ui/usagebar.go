package ui

import (
	"math"

	tm "github.com/nsf/termbox-go"
)

// rttBarWidth returns the length of the bar of a round-trip time: one cell
// per decade of microseconds.
func rttBarWidth(ms float64, w int) int {
	us := ms * 1000
	if us < 1 {
		return 0
	}
	barw := int(math.Log10(us)) + 1
	if barw > w {
		barw = w
	}
	return barw
}

func printRTTBar(x, y, w int, ms float64, clr tm.Attribute) {
	barw := rttBarWidth(ms, w)
	for j := 0; j < w; j++ {
		tm.SetCell(x+j, y, ' ', clr, tm.ColorDefault)
	}
	for j := 0; j < barw; j++ {
		tm.SetCell(x+j, y, symbols[symbolBar], clr|tm.AttrBold, tm.ColorDefault)
	}
}
