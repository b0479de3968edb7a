package page

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/wudi/pdfsearchify/coords"
)

// ImageObject is an image XObject placed on the page. Data holds either raw
// samples (Format == "") laid out by Width, Height, BitsPerComponent and
// ColorSpace, or a complete encoded file in Format ("png", "jpeg", "tiff").
type ImageObject struct {
	Marks
	Name             string // XObject resource name
	Width            int
	Height           int
	BitsPerComponent int
	ColorSpace       string
	Format           string
	Data             []byte
	Matrix           coords.Matrix // maps the unit square to page space (cm)
}

func (*ImageObject) Kind() ObjectKind { return KindImage }

// Decode converts the image data into a standard Go image.Image.
func (i *ImageObject) Decode() (image.Image, error) {
	if len(i.Data) == 0 {
		return nil, errors.New("image data is empty")
	}
	if i.Format != "" {
		img, _, err := image.Decode(bytes.NewReader(i.Data))
		if err != nil {
			return nil, fmt.Errorf("decode %s image: %w", i.Format, err)
		}
		return img, nil
	}

	pixelCount := i.Width * i.Height
	if pixelCount <= 0 {
		return nil, errors.New("invalid image dimensions")
	}
	rect := image.Rect(0, 0, i.Width, i.Height)

	if i.BitsPerComponent == 1 {
		stride := (i.Width + 7) / 8
		if len(i.Data) < stride*i.Height {
			return nil, fmt.Errorf("short 1-bit image: got %d bytes, want %d", len(i.Data), stride*i.Height)
		}
		gray := image.NewGray(rect)
		for y := 0; y < i.Height; y++ {
			for x := 0; x < i.Width; x++ {
				if i.Data[y*stride+x/8]&(0x80>>(x%8)) != 0 {
					gray.Pix[y*gray.Stride+x] = 0xff
				}
			}
		}
		return gray, nil
	}

	switch len(i.Data) {
	case pixelCount * 4:
		if i.ColorSpace == "DeviceCMYK" {
			return &image.CMYK{Pix: i.Data, Stride: i.Width * 4, Rect: rect}, nil
		}
		return &image.RGBA{Pix: i.Data, Stride: i.Width * 4, Rect: rect}, nil
	case pixelCount * 3:
		return &rgbImage{Pix: i.Data, Stride: i.Width * 3, Rect: rect}, nil
	case pixelCount:
		return &image.Gray{Pix: i.Data, Stride: i.Width, Rect: rect}, nil
	}
	return nil, fmt.Errorf("unsupported image format: %d bytes for %dx%d image", len(i.Data), i.Width, i.Height)
}

type rgbImage struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func (p *rgbImage) ColorModel() color.Model { return color.RGBAModel }
func (p *rgbImage) Bounds() image.Rectangle { return p.Rect }
func (p *rgbImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 255}
}
