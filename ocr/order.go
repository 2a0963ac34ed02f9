package ocr

import (
	"sort"
	"strings"
)

// ClusterLines groups recognized words into lines. Words whose
// vertical centers fall within half the taller word's height of each
// other are treated as sharing a baseline; words within a line are
// ordered left to right.
func ClusterLines(words []TextWord) []TextLine {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]TextWord(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bounds.CenterY() < sorted[j].Bounds.CenterY()
	})

	var groups [][]TextWord
	for _, w := range sorted {
		placed := false
		for gi := range groups {
			ref := groups[gi][0]
			limit := maxf(ref.Bounds.Height, w.Bounds.Height) / 2
			if absf(w.Bounds.CenterY()-ref.Bounds.CenterY()) <= limit {
				groups[gi] = append(groups[gi], w)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []TextWord{w})
		}
	}

	lines := make([]TextLine, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Bounds.X < g[j].Bounds.X })
		texts := make([]string, len(g))
		var conf float64
		bounds := g[0].Bounds
		for i, w := range g {
			texts[i] = w.Text
			conf += w.Confidence
			bounds = union(bounds, w.Bounds)
		}
		lines = append(lines, TextLine{
			Text:       strings.Join(texts, " "),
			Bounds:     bounds,
			Words:      g,
			Confidence: conf / float64(len(g)),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Bounds.CenterY() < lines[j].Bounds.CenterY()
	})
	return lines
}

// SortReadingOrder arranges blocks top-to-bottom, and left-to-right
// within a cluster of blocks sharing a vertical band. The input slice
// is not modified.
func SortReadingOrder(blocks []TextBlock) []TextBlock {
	if len(blocks) < 2 {
		return append([]TextBlock(nil), blocks...)
	}
	sorted := append([]TextBlock(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bounds.CenterY() < sorted[j].Bounds.CenterY()
	})

	var rows [][]TextBlock
	for _, b := range sorted {
		placed := false
		for ri := range rows {
			ref := rows[ri][0]
			limit := maxf(ref.Bounds.Height, b.Bounds.Height) / 2
			if absf(b.Bounds.CenterY()-ref.Bounds.CenterY()) <= limit {
				rows[ri] = append(rows[ri], b)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []TextBlock{b})
		}
	}

	out := make([]TextBlock, 0, len(blocks))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].Bounds.X < row[j].Bounds.X })
		out = append(out, row...)
	}
	return out
}

func union(a, b Region) Region {
	x0 := minf(a.X, b.X)
	y0 := minf(a.Y, b.Y)
	x1 := maxf(a.X+a.Width, b.X+b.Width)
	y1 := maxf(a.Y+a.Height, b.Y+b.Height)
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
