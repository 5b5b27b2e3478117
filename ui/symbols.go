package ui

import "github.com/mattn/go-runewidth"

const (
	symbolLeftTop = iota
	symbolHorizontal
	symbolRightTop
	symbolVertical
	symbolLeftBottom
	symbolRightBottom
	symbolMiddleBottom
	symbolMiddleTop
	symbolMiddleLeft
	symbolMiddleRight
	symbolMiddleMiddle
	symbolSpace
	symbolBar
	symbolLeftArrow
	symbolRightArrow
)

var symbols = boxSymbols

var (
	boxSymbols   = []rune{'┌', '─', '┐', '│', '└', '┘', '┴', '┬', '├', '┤', '┼', ' ', '▓', '←', '→'}
	asciiSymbols = []rune{'+', '-', '+', '|', '+', '+', '+', '+', '+', '+', '+', ' ', '#', '<', '>'}
)

// East Asian terminals draw box symbols two cells wide.
func init() {
	if runewidth.IsEastAsian() {
		symbols = asciiSymbols
	}
}
