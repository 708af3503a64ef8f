package image

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Layer returns a copy of bottom with top drawn over it. top starts out
// aligned with the bottom-left corner of bottom and is then shifted by (x, y).
func Layer(bottom image.Image, top image.Image, x, y int) image.Image {
	dims := bottom.Bounds()
	offset := image.Pt(dims.Min.X+x, dims.Min.Y+y+dims.Dy()-top.Bounds().Dy())
	res := image.NewRGBA(dims)
	draw.Draw(res, dims, bottom, dims.Min, draw.Src)
	draw.Draw(res, top.Bounds().Sub(top.Bounds().Min).Add(offset), top, top.Bounds().Min, draw.Over)

	return res
}

// Clear resets every pixel of dst to transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Fill draws src over dst so that it covers all of dst's bounds. Sources of a
// different size are scaled to cover and cropped around their center.
func Fill(dst draw.Image, src image.Image) {
	db := dst.Bounds()
	sb := src.Bounds()
	if sb.Empty() || db.Empty() {
		return
	}

	if sb.Dx() == db.Dx() && sb.Dy() == db.Dy() {
		draw.Draw(dst, db, src, sb.Min, draw.Over)
		return
	}

	xdraw.CatmullRom.Scale(dst, db, src, coverRect(sb, db), draw.Over, nil)
}

// coverRect is the centered part of src with the aspect ratio of dst.
func coverRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()

	// compare sw/sh with dw/dh without floats
	if sw*dh > sh*dw {
		w := sh * dw / dh
		x0 := src.Min.X + (sw-w)/2
		return image.Rect(x0, src.Min.Y, x0+w, src.Max.Y)
	}
	h := sw * dh / dw
	y0 := src.Min.Y + (sh-h)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+h)
}
