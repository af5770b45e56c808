package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	// Background formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/jpeg"
)

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// cover scales img to fill w x h, cropping the longer axis around the
// centre.
func cover(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	src := b
	// Compare aspect ratios without division: sw/sh > w/h.
	if b.Dx()*h > w*b.Dy() {
		cw := b.Dy() * w / h
		src.Min.X = b.Min.X + (b.Dx()-cw)/2
		src.Max.X = src.Min.X + cw
	} else {
		ch := b.Dx() * h / w
		src.Min.Y = b.Min.Y + (b.Dy()-ch)/2
		src.Max.Y = src.Min.Y + ch
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
