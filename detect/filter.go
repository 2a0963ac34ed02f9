package detect

import "math"

// gaussian3x3 applies a 3x3 Gaussian kernel (1 2 1 / 2 4 2 / 1 2 1,
// normalized by 16). Border pixels are copied through unchanged.
func gaussian3x3(src []uint8, w, h int) []uint8 {
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

// sobelMagnitude computes the gradient magnitude with 3x3 Sobel
// kernels, clamped to 255. The one-pixel border is left at zero.
func sobelMagnitude(src []uint8, w, h int) []uint8 {
	dst := make([]uint8, len(src))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			tl, tc, tr := int32(src[i-w-1]), int32(src[i-w]), int32(src[i-w+1])
			ml, mr := int32(src[i-1]), int32(src[i+1])
			bl, bc, br := int32(src[i+w-1]), int32(src[i+w]), int32(src[i+w+1])
			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			mag := math.Sqrt(float64(gx*gx + gy*gy))
			if mag > 255 {
				mag = 255
			}
			dst[i] = uint8(mag)
		}
	}
	return dst
}

// otsuThreshold picks the threshold that minimizes intra-class
// variance over the intensity histogram.
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
