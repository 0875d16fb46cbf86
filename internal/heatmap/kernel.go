package heatmap

import "math"

// gaussianKernel builds a (2r+1)x(2r+1) kernel with sigma = r/3,
// normalized to unit sum. Radius 0 degenerates to a single unit cell.
func gaussianKernel(radius int) [][]float64 {
	if radius <= 0 {
		return [][]float64{{1}}
	}

	size := 2*radius + 1
	sigma := float64(radius) / 3

	kernel := make([][]float64, size)
	sum := 0.0
	for y := -radius; y <= radius; y++ {
		row := make([]float64, size)
		for x := -radius; x <= radius; x++ {
			v := math.Exp(-float64(x*x+y*y) / (2 * sigma * sigma))
			row[x+radius] = v
			sum += v
		}
		kernel[y+radius] = row
	}

	for y := range kernel {
		for x := range kernel[y] {
			kernel[y][x] /= sum
		}
	}
	return kernel
}
