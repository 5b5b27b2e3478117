package ui

import (
	"github.com/mattn/go-runewidth"
	tm "github.com/nsf/termbox-go"
)

// setText draws text from x, skipping a cell after each wide rune, and
// returns the number of cells used.
func setText(x, y int, text string, fg, bg tm.Attribute) int {
	xoff := 0
	for _, r := range text {
		tm.SetCell(x+xoff, y, r, fg, bg)
		xoff += runewidth.RuneWidth(r)
	}
	return xoff
}

func clearLine(x, y, w int, fg, bg tm.Attribute) {
	for i := 0; i < w; i++ {
		tm.SetCell(x+i, y, ' ', fg, bg)
	}
}

func printHLineText(x, y int, w int, text string) {
	for i := 0; i < w; i++ {
		tm.SetCell(x+i, y, symbols[symbolHorizontal], tm.ColorWhite, tm.ColorDefault)
	}
	text = runewidth.Truncate(text, w, "…")
	setText(x+(w-runewidth.StringWidth(text))/2, y, text, tm.ColorWhite, tm.ColorDefault)
}

func printVLine(x, y int, h int) {
	tm.SetCell(x, y, symbols[symbolMiddleTop], tm.ColorWhite, tm.ColorDefault)
	for i := 1; i < h; i++ {
		tm.SetCell(x, y+i, symbols[symbolVertical], tm.ColorWhite, tm.ColorDefault)
	}
}

func printText(x, y, w int, text string, fg, bg tm.Attribute) {
	clearLine(x, y, w, fg, bg)
	setText(x, y, runewidth.Truncate(text, w, "…"), fg, bg)
}

func printCenterText(x, y, w int, text string, fg, bg tm.Attribute) {
	clearLine(x, y, w, fg, bg)
	text = runewidth.Truncate(text, w, "…")
	setText(x+(w-runewidth.StringWidth(text))/2, y, text, fg, bg)
}
