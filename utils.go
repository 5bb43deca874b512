package terramap

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
)

// savePNG to disk
func savePNG(fpath string, in image.Image) error {
	buff := new(bytes.Buffer)
	err := png.Encode(buff, in)
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, buff.Bytes(), 0644)
}

// maxint returns the highest of two ints
func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// maxFloat returns the highest value in `in`, -Inf if empty
func maxFloat(in []float64) float64 {
	hi := math.Inf(-1)
	for _, v := range in {
		if v > hi {
			hi = v
		}
	}
	return hi
}
