package enhance

import "math"

// clahe performs contrast-limited adaptive histogram equalization.
// The image is divided into grid x grid tiles; each tile gets a
// clipped, equalized intensity mapping, and every pixel is remapped by
// bilinear interpolation between the four surrounding tile mappings.
func clahe(src []uint8, w, h int, clipLimit float64, grid int) []uint8 {
	if grid < 1 {
		grid = 1
	}
	tileW := (w + grid - 1) / grid
	tileH := (h + grid - 1) / grid

	luts := make([][256]uint8, grid*grid)
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)
			luts[ty*grid+tx] = tileLUT(src, w, x0, y0, x1, y1, clipLimit)
		}
	}

	dst := make([]uint8, len(src))
	for y := 0; y < h; y++ {
		// Position relative to tile centers.
		fy := (float64(y)-float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		ty0 = clampTile(ty0, grid)
		ty1 = clampTile(ty1, grid)
		for x := 0; x < w; x++ {
			fx := (float64(x)-float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			tx0 = clampTile(tx0, grid)
			tx1 = clampTile(tx1, grid)

			v := src[y*w+x]
			top := (1-wx)*float64(luts[ty0*grid+tx0][v]) + wx*float64(luts[ty0*grid+tx1][v])
			bot := (1-wx)*float64(luts[ty1*grid+tx0][v]) + wx*float64(luts[ty1*grid+tx1][v])
			dst[y*w+x] = uint8(math.Round((1-wy)*top + wy*bot))
		}
	}
	return dst
}

func clampTile(i, grid int) int {
	if i < 0 {
		return 0
	}
	if i >= grid {
		return grid - 1
	}
	return i
}

// tileLUT builds the clipped equalization mapping for one tile.
func tileLUT(src []uint8, stride, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]float64
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src[y*stride+x]]++
			n++
		}
	}
	var lut [256]uint8
	if n == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip peaks and redistribute the excess uniformly.
	clip := clipLimit * float64(n) / 256
	var excess float64
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	share := excess / 256
	var cdf float64
	for i := range hist {
		cdf += hist[i] + share
		v := math.Round(cdf * 255 / float64(n))
		lut[i] = uint8(math.Max(0, math.Min(255, v)))
	}
	return lut
}

// unsharpMask sharpens by adding back the difference between the
// image and its Gaussian blur.
func unsharpMask(src []uint8, w, h int, amount float64) []uint8 {
	blurred := blur3x3(src, w, h)
	dst := make([]uint8, len(src))
	for i := range src {
		v := float64(src[i]) + amount*(float64(src[i])-float64(blurred[i]))
		dst[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return dst
}

func blur3x3(src []uint8, w, h int) []uint8 {
	dst := make([]uint8, len(src))
	copy(dst, src)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			sum := 4 * uint32(src[i])
			sum += 2 * (uint32(src[i-1]) + uint32(src[i+1]) + uint32(src[i-w]) + uint32(src[i+w]))
			sum += uint32(src[i-w-1]) + uint32(src[i-w+1]) + uint32(src[i+w-1]) + uint32(src[i+w+1])
			dst[i] = uint8((sum + 8) / 16)
		}
	}
	return dst
}

// otsuThreshold picks the global threshold minimizing intra-class
// variance.
func otsuThreshold(pix []uint8) uint8 {
	var hist [256]int
	for _, v := range pix {
		hist[v]++
	}
	total := len(pix)
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}
	var sumB, wB float64
	var best float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}
