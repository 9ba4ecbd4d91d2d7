package loader

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cityconquer.ai/internal/scene"
)

func loadMaterial(fsys fs.FS, path string) (*scene.Material, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &scene.Material{
		TexturePath: path,
		Width:       b.Dx(),
		Height:      b.Dy(),
		BaseColor:   averageColor(img),
	}, nil
}

// averageColor downsamples img to a single pixel.
func averageColor(img image.Image) color.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst.RGBAAt(0, 0)
}
