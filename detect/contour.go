package detect

import (
	"image"
	"math"

	"github.com/wudi/docscan/geo"
)

// Moore neighborhood in clockwise order for screen coordinates
// (y grows downward): W, NW, N, NE, E, SE, S, SW.
var moore = [8][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}}

func mooreIndex(dx, dy int) int {
	for i, d := range moore {
		if d[0] == dx && d[1] == dy {
			return i
		}
	}
	return 0
}

// traceContours enumerates the closed boundaries of connected
// foreground regions in a binary edge map using Moore-neighbor
// tracing with Jacob's stopping criterion.
func traceContours(edge []uint8, w, h int) [][]geo.Point {
	visited := make([]bool, len(edge))
	isSet := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && edge[y*w+x] != 0
	}

	var contours [][]geo.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if edge[i] == 0 || visited[i] {
				continue
			}
			if x > 0 && edge[i-1] != 0 {
				continue // boundary traces start after a background run
			}
			boundary := traceBoundary(isSet, image.Pt(x, y), w, h)
			for _, p := range boundary {
				visited[p.Y*w+p.X] = true
			}
			if len(boundary) < 8 {
				continue
			}
			pts := make([]geo.Point, len(boundary))
			for k, p := range boundary {
				pts[k] = geo.Point{X: float64(p.X), Y: float64(p.Y)}
			}
			contours = append(contours, pts)
		}
	}
	return contours
}

func traceBoundary(isSet func(x, y int) bool, start image.Point, w, h int) []image.Point {
	pts := []image.Point{start}
	cur := start
	backtrack := mooreIndex(-1, 0) // entered scanning from the west
	firstBacktrack := backtrack
	maxSteps := 4 * w * h

	for steps := 0; steps < maxSteps; steps++ {
		next := -1
		for i := 1; i <= 8; i++ {
			d := (backtrack + i) % 8
			if isSet(cur.X+moore[d][0], cur.Y+moore[d][1]) {
				next = d
				break
			}
		}
		if next < 0 {
			return pts // isolated pixel
		}
		// The neighbor checked just before the hit becomes the new
		// backtrack, expressed relative to the new current pixel.
		prev := (next + 7) % 8
		px := cur.X + moore[prev][0]
		py := cur.Y + moore[prev][1]
		cur = image.Pt(cur.X+moore[next][0], cur.Y+moore[next][1])
		backtrack = mooreIndex(px-cur.X, py-cur.Y)

		if cur == start && backtrack == firstBacktrack {
			return pts
		}
		pts = append(pts, cur)
	}
	return pts
}

// approxPolygon simplifies a closed contour with Douglas-Peucker,
// splitting at the point farthest from the first, then prunes
// near-collinear vertices that survive as chain anchors.
func approxPolygon(pts []geo.Point, eps float64) []geo.Point {
	if len(pts) < 3 {
		return pts
	}
	far := 0
	var maxDist float64
	for i, p := range pts {
		if d := p.Dist(pts[0]); d > maxDist {
			maxDist = d
			far = i
		}
	}
	if far == 0 {
		return pts[:1]
	}
	chainA := dpSimplify(pts[:far+1], eps)
	chainB := dpSimplify(append(append([]geo.Point{}, pts[far:]...), pts[0]), eps)

	poly := make([]geo.Point, 0, len(chainA)+len(chainB))
	poly = append(poly, chainA...)
	if len(chainB) > 2 {
		poly = append(poly, chainB[1:len(chainB)-1]...)
	}
	return pruneCollinear(poly, eps)
}

func dpSimplify(pts []geo.Point, eps float64) []geo.Point {
	if len(pts) < 3 {
		return pts
	}
	var maxDist float64
	idx := 0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDist(pts[i], pts[0], pts[len(pts)-1]); d > maxDist {
			maxDist = d
			idx = i
		}
	}
	if maxDist <= eps {
		return []geo.Point{pts[0], pts[len(pts)-1]}
	}
	left := dpSimplify(pts[:idx+1], eps)
	right := dpSimplify(pts[idx:], eps)
	out := make([]geo.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

// pruneCollinear repeatedly drops the vertex that deviates least from
// the line through its neighbors, as long as that deviation is within
// eps. Chain anchors that landed mid-edge are removed here.
func pruneCollinear(poly []geo.Point, eps float64) []geo.Point {
	for len(poly) > 3 {
		minIdx := -1
		minDist := math.MaxFloat64
		for i := range poly {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			if d := segmentDist(poly[i], prev, next); d < minDist {
				minDist = d
				minIdx = i
			}
		}
		if minDist > eps {
			break
		}
		poly = append(poly[:minIdx], poly[minIdx+1:]...)
	}
	return poly
}

// segmentDist returns the distance from p to the segment ab.
func segmentDist(p, a, b geo.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(geo.Point{X: a.X + t*abx, Y: a.Y + t*aby})
}
