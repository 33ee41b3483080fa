package phash

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/imagedupe/phashcluster/pkg/errs"
)

// Preprocess decodes r, normalizes EXIF orientation when present, converts to
// grayscale and force-resizes to an n x n pixel matrix of values in [0,255].
//
// A decode failure is reported as errs.ErrImageDecodeFailed and never
// panics; callers surface this as a recovered per-image failure (the hasher
// returns an empty fingerprint with ok=false), never a batch abort.
func Preprocess(r io.Reader, n int) ([][]float32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.ErrImageDecodeFailed
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.ErrImageDecodeFailed
	}

	img = normalizeOrientation(img, data)

	gray := imaging.Grayscale(img)
	resized := resize.Resize(uint(n), uint(n), gray, resize.Lanczos3)

	return toMatrix(resized, n), nil
}

// normalizeOrientation rotates/flips img to upright according to the EXIF
// Orientation tag found in the original encoded bytes, if any. Missing or
// unparsable EXIF data is never an error: the image is used as-is.
func normalizeOrientation(img image.Image, data []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return img
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// toMatrix converts an n x n grayscale image into a row-major float32
// pixel matrix scaled to [0,255].
func toMatrix(img image.Image, n int) [][]float32 {
	m := make([][]float32, n)
	for y := 0; y < n; y++ {
		m[y] = make([]float32, n)
		for x := 0; x < n; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			m[y][x] = float32(r) / 257.0 // 16-bit -> 8-bit range
		}
	}
	return m
}
