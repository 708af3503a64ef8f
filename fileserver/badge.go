package fileserver

import (
	"bytes"
	"context"
	"fmt"
	goimage "image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log"
	"net/http"

	"github.com/Carbon-X-DAO/AvatarMix/image"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// handleBadge exports a card with the composite next to a QR code of the
// outfit code.
func (server *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	avatar, err := server.editor.Composite(ctx)
	if err != nil {
		writeErr(fmt.Errorf("failed to read composite: %w", err), w)
		return
	}
	code := server.editor.OutfitCode()

	qrCode, err := generateQRCode(code, avatar.Bounds().Dy())
	if err != nil {
		writeErr(err, w)
		return
	}

	badge := generateBadge(avatar, qrCode)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, badge, &jpeg.Options{Quality: 95}); err != nil {
		writeErr(fmt.Errorf("failed to encode JPEG: %w", err), w)
		return
	}

	filename := fmt.Sprintf("badge-%d.jpg", server.now().Unix())
	go server.saveExport(filename, code, buf.Len())

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write badge %s: %s", filename, err)
	}
}

func generateQRCode(content string, size int) (goimage.Image, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q as QR code: %w", content, err)
	}

	// Scale the barcode to the appropriate size, never below one pixel per module
	size = max(size, code.Bounds().Dx(), code.Bounds().Dy())
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	return scaled, nil
}

// generateBadge lays avatar and code side by side on a card tinted with the
// avatar's dominant colour.
func generateBadge(avatar, code goimage.Image) goimage.Image {
	pad := avatar.Bounds().Dx() / 8
	width := avatar.Bounds().Dx() + code.Bounds().Dx() + 3*pad
	height := max(avatar.Bounds().Dy(), code.Bounds().Dy()) + 2*pad

	card := goimage.NewRGBA(goimage.Rect(0, 0, width, height))
	draw.Draw(card, card.Bounds(), &goimage.Uniform{badgeColor(avatar)}, goimage.Point{}, draw.Src)

	res := image.Layer(card, avatar, pad, -pad)
	return image.Layer(res, code, 2*pad+avatar.Bounds().Dx(), -pad)
}

// badgeColor is a light tint of the avatar's dominant colour, or white for a
// blank avatar.
func badgeColor(avatar goimage.Image) color.Color {
	white := colorful.Color{R: 1, G: 1, B: 1}
	if blank(avatar) {
		return white
	}

	dominant := dominantcolor.Find(avatar)
	if dominant.A == 0 {
		return white
	}
	c, ok := colorful.MakeColor(dominant)
	if !ok {
		return white
	}

	return c.BlendLab(white, 0.7).Clamped()
}

func blank(img goimage.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}
