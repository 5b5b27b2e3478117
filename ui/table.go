package ui

import (
	"github.com/mattn/go-runewidth"
	tm "github.com/nsf/termbox-go"
)

type table struct {
	ccount  int
	cwidth  []int
	x       int
	y       int
	cr      int
	justify []int
	border  int
}

const (
	tableJustifyLeft = iota
	tableJustifyRight
	tableJustifyCenter
)

const (
	tableBorder = iota
	tableNoBorder
)

func (t *table) width() int {
	twidth := t.ccount + 1
	for _, w := range t.cwidth {
		twidth += w
	}
	return twidth
}

func (t *table) drawTblRow(ledge, redge, middle, spr rune, fg, bg tm.Attribute) {
	twidth := t.width()
	for i := 0; i < twidth; i++ {
		tm.SetCell(t.x+i, t.y+t.cr, middle, fg, bg)
	}

	if t.border == tableBorder {
		tm.SetCell(t.x, t.y+t.cr, ledge, fg, bg)
		tm.SetCell(t.x+twidth, t.y+t.cr, redge, fg, bg)
	}

	o := 0
	for c, w := range t.cwidth {
		o += w + 1
		if c < t.ccount-1 {
			tm.SetCell(t.x+o, t.y+t.cr, spr, fg, bg)
		}
	}
	t.cr++
}

// justifyCell pads s to w cells. Columns without a justification are left
// justified.
func (t *table) justifyCell(i, w int, s string) string {
	s = runewidth.Truncate(s, w, "…")
	j := tableJustifyLeft
	if i < len(t.justify) {
		j = t.justify[i]
	}
	switch j {
	case tableJustifyRight:
		return runewidth.FillLeft(s, w)
	case tableJustifyCenter:
		pad := (w - runewidth.StringWidth(s)) / 2
		return runewidth.FillRight(runewidth.FillLeft(s, runewidth.StringWidth(s)+pad), w)
	}
	return runewidth.FillRight(s, w)
}

func (t *table) addTblRow(row []string, fg tm.Attribute) {
	t.drawTblRow(symbols[symbolVertical], symbols[symbolVertical], symbols[symbolSpace],
		symbols[symbolVertical], tm.ColorDefault, tm.ColorDefault)
	t.cr--

	o := 1
	for i := 0; i < t.ccount && i < len(row); i++ {
		w := t.cwidth[i]
		x := t.x + o
		if i == 0 && t.border == tableNoBorder {
			x--
		}
		printText(x, t.y+t.cr, w, t.justifyCell(i, w, row[i]), fg, tm.ColorDefault)
		o += w + 1
	}

	t.cr++
}

func (t *table) addTblSpr() {
	t.drawTblRow(symbols[symbolMiddleLeft], symbols[symbolMiddleRight], symbols[symbolHorizontal],
		symbols[symbolMiddleMiddle], tm.ColorDefault, tm.ColorDefault)
}

func (t *table) addTblHdr() {
	t.drawTblRow(symbols[symbolLeftTop], symbols[symbolRightTop], symbols[symbolHorizontal],
		symbols[symbolMiddleTop], tm.ColorDefault, tm.ColorDefault)
}

func (t *table) addTblFtr() {
	t.drawTblRow(symbols[symbolLeftBottom], symbols[symbolRightBottom], symbols[symbolHorizontal],
		symbols[symbolMiddleBottom], tm.ColorDefault, tm.ColorDefault)
}
