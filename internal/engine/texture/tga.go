package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

// ErrTGATruncated is returned when TGA pixel data ends early.
var ErrTGATruncated = errors.New("tga: data truncated")

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// images with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	if imageType != tgaTrueColor && imageType != tgaTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if 18+idLength > len(data) {
		return nil, ErrTGATruncated
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[18+idLength:],
		stride:      bpp / 8,
		topToBottom: topToBottom,
	}
	total := width * height

	if imageType == tgaTrueColor {
		if len(d.src) < total*d.stride {
			return nil, ErrTGATruncated
		}
		for d.n < total {
			d.put(d.next())
		}
		return d.img, nil
	}

	for d.n < total {
		if d.pos >= len(d.src) {
			return nil, ErrTGATruncated
		}
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7f) + 1

		if header&0x80 != 0 {
			if !d.has(1) {
				return nil, ErrTGATruncated
			}
			c := d.next()
			for i := 0; i < count && d.n < total; i++ {
				d.put(c)
			}
			continue
		}
		if !d.has(count) {
			return nil, ErrTGATruncated
		}
		for i := 0; i < count && d.n < total; i++ {
			d.put(d.next())
		}
	}
	return d.img, nil
}

// tgaDecoder walks BGR(A) source pixels and writes them in scan order.
type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	n           int
	stride      int
	topToBottom bool
}

func (d *tgaDecoder) has(pixels int) bool {
	return d.pos+pixels*d.stride <= len(d.src)
}

func (d *tgaDecoder) next() color.RGBA {
	p := d.src[d.pos : d.pos+d.stride]
	d.pos += d.stride
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.stride == 4 {
		c.A = p[3]
	}
	return c
}

func (d *tgaDecoder) put(c color.RGBA) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := d.n%w, d.n/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.n++
}
