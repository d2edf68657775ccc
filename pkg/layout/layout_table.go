package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// tableCell is a cell placed in the grid.
type tableCell struct {
	b                *box.Box
	row, col         int
	rowSpan, colSpan int
}

// tableRow is a grid row. b is nil for the anonymous row holding cells
// that are direct children of a table or a row group.
type tableRow struct {
	b     *box.Box
	group *box.Box
}

// tableGrid is the cell layout of a table in the separated borders model.
type tableGrid struct {
	rows     []tableRow
	cells    []*tableCell
	cols     int
	captions []*box.Box
	groups   []*box.Box
	occupied [][]bool
}

// buildGrid assigns rows and columns to the cells of t. Header groups come
// first and footer groups last; text between table parts is ignored.
func (e *Engine) buildGrid(t *box.Box) *tableGrid {
	g := &tableGrid{}
	var head, body, foot []*box.Box
	for _, c := range t.Children {
		if c.Style == nil {
			continue
		}
		switch c.Style.Display {
		case css.DisplayTableCaption:
			g.captions = append(g.captions, c)
		case css.DisplayTableHeaderGroup:
			head = append(head, c)
		case css.DisplayTableFooterGroup:
			foot = append(foot, c)
		default:
			body = append(body, c)
		}
	}
	for _, list := range [][]*box.Box{head, body, foot} {
		var loose []*box.Box
		flush := func() {
			if len(loose) > 0 {
				g.addRow(nil, t, loose)
				loose = nil
			}
		}
		for _, c := range list {
			switch d := c.Style.Display; {
			case d == css.DisplayTableRowGroup || d == css.DisplayTableHeaderGroup || d == css.DisplayTableFooterGroup:
				flush()
				g.groups = append(g.groups, c)
				g.addGroup(c)
			case d == css.DisplayTableRow:
				flush()
				g.addRow(c, nil, c.Children)
			case isCellCandidate(c):
				loose = append(loose, c)
			}
		}
		flush()
	}
	return g
}

func (g *tableGrid) addGroup(grp *box.Box) {
	var loose []*box.Box
	for _, c := range grp.Children {
		switch {
		case c.Style != nil && c.Style.Display == css.DisplayTableRow:
			if len(loose) > 0 {
				g.addRow(nil, grp, loose)
				loose = nil
			}
			g.addRow(c, grp, c.Children)
		case isCellCandidate(c):
			loose = append(loose, c)
		}
	}
	if len(loose) > 0 {
		g.addRow(nil, grp, loose)
	}
}

// isCellCandidate reports whether c takes a grid slot: any element other
// than columns, captions and table parts handled elsewhere.
func isCellCandidate(c *box.Box) bool {
	if c.Style == nil || c.IsText() {
		return false
	}
	switch c.Style.Display {
	case css.DisplayNone, css.DisplayTableColumn, css.DisplayTableColumnGroup, css.DisplayTableCaption:
		return false
	}
	return true
}

func (g *tableGrid) addRow(row, group *box.Box, cells []*box.Box) {
	r := len(g.rows)
	g.rows = append(g.rows, tableRow{b: row, group: group})
	for len(g.occupied) <= r {
		g.occupied = append(g.occupied, nil)
	}
	col := 0
	for _, c := range cells {
		if !isCellCandidate(c) {
			continue
		}
		for g.taken(r, col) {
			col++
		}
		rs, cs := max(1, int(c.Style.RowSpan)), max(1, int(c.Style.ColumnSpan))
		g.cells = append(g.cells, &tableCell{b: c, row: r, col: col, rowSpan: rs, colSpan: cs})
		for i := r; i < r+rs; i++ {
			for len(g.occupied) <= i {
				g.occupied = append(g.occupied, nil)
			}
			for len(g.occupied[i]) < col+cs {
				g.occupied[i] = append(g.occupied[i], false)
			}
			for j := col; j < col+cs; j++ {
				g.occupied[i][j] = true
			}
		}
		col += cs
		g.cols = max(g.cols, col)
	}
}

func (g *tableGrid) taken(r, c int) bool {
	return r < len(g.occupied) && c < len(g.occupied[r]) && g.occupied[r][c]
}

// clampSpans cuts row spans that reach past the last row.
func (g *tableGrid) clampSpans() {
	for _, c := range g.cells {
		c.rowSpan = min(c.rowSpan, len(g.rows)-c.row)
	}
}

// columnExtents returns the intrinsic widths of every column. A cell
// spanning several columns spreads what they lack equally among them.
func (e *Engine) columnExtents(g *tableGrid, sh int) []extent {
	cols := make([]extent, g.cols)
	for _, c := range g.cells {
		if c.colSpan == 1 {
			x := e.minMax(c.b)
			cols[c.col].min = max(cols[c.col].min, x.min)
			cols[c.col].max = max(cols[c.col].max, x.max)
		}
	}
	for _, c := range g.cells {
		if c.colSpan == 1 {
			continue
		}
		x := e.minMax(c.b)
		span := cols[c.col : c.col+c.colSpan]
		have := extent{sh * (c.colSpan - 1), sh * (c.colSpan - 1)}
		for _, s := range span {
			have.min += s.min
			have.max += s.max
		}
		spread(span, x.min-have.min, func(s *extent, d int) { s.min += d })
		spread(span, x.max-have.max, func(s *extent, d int) { s.max += d })
	}
	for i := range cols {
		cols[i].max = max(cols[i].max, cols[i].min)
	}
	return cols
}

func spread(span []extent, need int, add func(*extent, int)) {
	if need <= 0 {
		return
	}
	n := len(span)
	for i := range span {
		add(&span[i], need*(i+1)/n-need*i/n)
	}
}

// tableMinMax returns the intrinsic widths of a table.
func (e *Engine) tableMinMax(t *box.Box) extent {
	cs := t.Style
	g := e.buildGrid(t)
	sh := int(cs.BorderSpacingH)
	var x extent
	for _, c := range e.columnExtents(g, sh) {
		x.min += c.min
		x.max += c.max
	}
	if g.cols > 0 {
		x = x.add(sh * (g.cols + 1))
	}
	x = x.add(frame(cs, 0).h())
	if cs.Width.Unit == css.UnitPx {
		w := max(int(cs.Width.V)+frame(cs, 0).h(), x.min)
		x = extent{w, w}
	}
	for _, c := range g.captions {
		cx := e.minMax(c).add(pxMargins(c.Style))
		x.min = max(x.min, cx.min)
		x.max = max(x.max, x.min)
	}
	return x
}

// columnWidths chooses the column widths and the border-box width of the
// table given the room avail.
func (e *Engine) columnWidths(t *box.Box, g *tableGrid, avail, cbw int) ([]int, int) {
	cs := t.Style
	fr := frame(cs, cbw)
	sh := int(cs.BorderSpacingH)
	spacing := 0
	if g.cols > 0 {
		spacing = sh * (g.cols + 1)
	}
	widths := make([]int, g.cols)
	explicit := !cs.Width.IsAuto()
	content := 0
	if explicit {
		content = clampWidth(cs, cs.Width.Resolve(cbw), cbw) - spacing
	}

	if explicit && cs.TableLayout == css.TableLayoutFixed {
		// The first row alone decides; the remaining room goes equally to
		// the columns it leaves open.
		set := make([]bool, g.cols)
		used := 0
		for _, c := range g.cells {
			if c.row != 0 || c.b.Style.Width.IsAuto() {
				continue
			}
			w := c.b.Style.Width.Resolve(content) + frame(c.b.Style, content).h()
			for j := c.col; j < c.col+c.colSpan; j++ {
				widths[j] = w/c.colSpan + boolInt(j == c.col)*(w%c.colSpan)
				set[j] = true
			}
			used += w
		}
		open := 0
		for _, s := range set {
			if !s {
				open++
			}
		}
		rest := max(0, content-used)
		k := 0
		for j, s := range set {
			if !s {
				widths[j] = rest*(k+1)/open - rest*k/open
				k++
			}
		}
		return widths, sum(widths) + spacing + fr.h()
	}

	cols := e.columnExtents(g, sh)
	var sumMin, sumMax int
	for _, c := range cols {
		sumMin += c.min
		sumMax += c.max
	}
	target := content
	if !explicit {
		target = min(max(avail-fr.h()-spacing, sumMin), sumMax)
	}
	target = max(target, sumMin)

	weights := make([]int, g.cols)
	base := make([]int, g.cols)
	extra := 0
	if target >= sumMax {
		extra = target - sumMax
		for i, c := range cols {
			base[i], weights[i] = c.max, c.max
		}
	} else {
		extra = target - sumMin
		for i, c := range cols {
			base[i], weights[i] = c.min, c.max-c.min
		}
	}
	total := sum(weights)
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = len(weights)
	}
	acc := 0
	for i := range widths {
		prev := extra * acc / total
		acc += weights[i]
		widths[i] = base[i] + extra*acc/total - prev
	}
	return widths, sum(widths) + spacing + fr.h()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// layoutTable lays out a table whose border box starts at x and may use
// avail pixels. Captions sit above or below the border box. It returns the
// bottom of the last caption or of the table.
func (e *Engine) layoutTable(t *box.Box, x, y, avail, cbw, cbh int) int {
	cs := t.Style
	fr := frame(cs, cbw)
	sh, sv := int(cs.BorderSpacingH), int(cs.BorderSpacingV)
	pad := paddings(cs, cbw)
	t.PaddingTop, t.PaddingBottom = pad[css.SideTop], pad[css.SideBottom]

	g := e.buildGrid(t)
	g.clampSpans()
	widths, tw := e.columnWidths(t, g, avail, cbw)

	cy := y
	for _, c := range g.captions {
		if c.Style.CaptionSide == css.CaptionTop {
			cy = e.layoutCaption(c, x, cy, tw)
		}
	}

	t.X, t.Y, t.Width = x, cy, tw
	colX := make([]int, g.cols+1)
	colX[0] = x + fr[css.SideLeft] + sh
	for i, w := range widths {
		colX[i+1] = colX[i] + w + sh
	}
	spanWidth := func(c *tableCell) int {
		return colX[c.col+c.colSpan] - colX[c.col] - sh
	}

	for _, c := range g.cells {
		e.layoutSized(c.b, colX[c.col], 0, spanWidth(c), tw, -1, nil)
	}

	rows := len(g.rows)
	rowH := make([]int, rows)
	rowAsc := make([]int, rows)
	rowDesc := make([]int, rows)
	for i, r := range g.rows {
		if r.b != nil {
			if h, ok := specifiedHeight(r.b.Style, -1); ok {
				rowH[i] = h
			}
		}
	}
	for _, c := range g.cells {
		if c.rowSpan != 1 {
			continue
		}
		rowH[c.row] = max(rowH[c.row], c.b.Height)
		if c.b.Style.VerticalAlign == css.VAlignBaseline {
			asc := cellAscent(e, c.b)
			rowAsc[c.row] = max(rowAsc[c.row], asc)
			rowDesc[c.row] = max(rowDesc[c.row], c.b.Height-asc)
		}
	}
	for i := range rowH {
		rowH[i] = max(rowH[i], rowAsc[i]+rowDesc[i])
	}
	for _, c := range g.cells {
		if c.rowSpan == 1 {
			continue
		}
		last := c.row + c.rowSpan - 1
		have := sv * (c.rowSpan - 1)
		for i := c.row; i <= last; i++ {
			have += rowH[i]
		}
		if c.b.Height > have {
			rowH[last] += c.b.Height - have
		}
	}

	rowY := make([]int, rows+1)
	rowY[0] = t.Y + fr[css.SideTop] + sv
	for i, h := range rowH {
		rowY[i+1] = rowY[i] + h + sv
	}
	if rows == 0 {
		rowY[0] = t.Y + fr[css.SideTop]
	}
	contentH := rowY[rows] - t.Y - fr[css.SideTop]
	if h, ok := specifiedHeight(cs, cbh); ok && h > contentH && rows > 0 {
		rowH[rows-1] += h - contentH
		rowY[rows] += h - contentH
		contentH = h
	}
	t.Height = contentH + fr.v()

	for _, c := range g.cells {
		cell := c.b
		top := rowY[c.row]
		h := rowY[c.row+c.rowSpan] - sv - top
		asc := cellAscent(e, cell)
		translate(cell, 0, top-cell.Y)
		d := 0
		switch cell.Style.VerticalAlign {
		case css.VAlignBaseline:
			d = rowAsc[c.row] - asc
		case css.VAlignMiddle:
			d = (h - cell.Height) / 2
		case css.VAlignBottom:
			d = h - cell.Height
		}
		d = max(0, min(d, h-cell.Height))
		if d > 0 {
			for _, k := range cell.Children {
				translate(k, 0, d)
			}
			cell.PaddingTop += d
			cell.Ascent += d
			if asc, ok := e.baselines[cell]; ok {
				e.baselines[cell] = asc + d
			}
		}
		cell.Height = h
	}

	inner := t.X + fr[css.SideLeft]
	innerW := tw - fr.h()
	for i, r := range g.rows {
		if r.b != nil {
			r.b.X, r.b.Y, r.b.Width, r.b.Height = inner, rowY[i], innerW, rowH[i]
			r.b.Ascent = rowAsc[i]
		}
	}
	for _, grp := range g.groups {
		first, last := -1, -1
		for i, r := range g.rows {
			if r.group == grp {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			grp.X, grp.Y, grp.Width, grp.Height = inner, rowY[0], innerW, 0
			continue
		}
		grp.X, grp.Y, grp.Width = inner, rowY[first], innerW
		grp.Height = rowY[last] + rowH[last] - rowY[first]
	}
	resetStray(t, t.Y)

	t.Ascent = t.Height
	if rows > 0 && rowAsc[0] > 0 {
		t.Ascent = rowY[0] + rowAsc[0] - t.Y
		e.baselines[t] = t.Ascent
	}

	bottom := t.Y + t.Height
	for _, c := range g.captions {
		if c.Style.CaptionSide == css.CaptionBottom {
			bottom = e.layoutCaption(c, x, bottom, tw)
		}
	}
	return bottom
}

// layoutCaption lays out a caption at y across the width of the table and
// returns the bottom of its margin box.
func (e *Engine) layoutCaption(c *box.Box, x, y, tw int) int {
	m := margins(c.Style, tw)
	return e.layoutBlock(c, x, y+m[css.SideTop], tw, -1, nil) + m[css.SideBottom]
}

// cellAscent returns the distance from the top of a cell to its first
// baseline, or its height when it has no lines.
func cellAscent(e *Engine, cell *box.Box) int {
	if asc, ok := e.baselines[cell]; ok {
		return asc
	}
	return cell.Height
}

// resetStray clears the geometry of the table parts that take no grid
// slot: columns and the text between rows and cells.
func resetStray(b *box.Box, y int) {
	for _, c := range b.Children {
		switch {
		case c.IsText():
			resetGeometry(c)
			c.X, c.Y = b.X, y
		case c.Style == nil:
		case c.Style.Display == css.DisplayTableColumn || c.Style.Display == css.DisplayTableColumnGroup:
			resetGeometry(c)
		case c.Style.Display == css.DisplayTableRow || c.Style.Display == css.DisplayTableRowGroup ||
			c.Style.Display == css.DisplayTableHeaderGroup || c.Style.Display == css.DisplayTableFooterGroup:
			resetStray(c, c.Y)
		}
	}
}
