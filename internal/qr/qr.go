// Package qr encodes the public chat page URL as a QR code for terminals and image files.
package qr

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Level is the error correction level used for every code (~30% recovery).
const Level = qrcode.High

// DefaultPNGSize is the edge length in pixels of written images.
const DefaultPNGSize = 256

// ErrEmptyURL is returned when there is nothing to encode.
var ErrEmptyURL = errors.New("qr: empty url")

// Encode builds the QR code for url.
func Encode(url string) (*qrcode.QRCode, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrEmptyURL
	}
	code, err := qrcode.New(url, Level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", url, err)
	}
	return code, nil
}

// Render returns url as a block-character QR code. Two modules are packed
// into each character cell so the code keeps its aspect ratio in a terminal.
func Render(url string) (string, error) {
	code, err := Encode(url)
	if err != nil {
		return "", err
	}
	return renderBitmap(code.Bitmap()), nil
}

// WritePNG writes url as a size×size PNG image to path.
func WritePNG(url, path string, size int) error {
	if strings.TrimSpace(url) == "" {
		return ErrEmptyURL
	}
	if size <= 0 {
		size = DefaultPNGSize
	}
	if err := qrcode.WriteFile(url, Level, size, path); err != nil {
		return fmt.Errorf("failed to write qr code to %s: %w", path, err)
	}
	return nil
}

// renderBitmap draws dark modules as light-on-dark blocks so the code scans
// on terminals with a dark background.
func renderBitmap(bitmap [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case !top && !bottom:
				b.WriteRune('█')
			case !top && bottom:
				b.WriteRune('▀')
			case top && !bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if y+2 < len(bitmap) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
