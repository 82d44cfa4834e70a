// Package artwork handles cover images around the catalog: sniffing the
// MIME type of externally fetched blobs, attaching them to track records,
// and exporting embedded art as bounded JPEG thumbnails.
package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"cadenza/types"
)

const jpegQuality = 90

// SniffMIME detects the content type of an image blob from its leading
// bytes, never from a filename.
func SniffMIME(data []byte) string {
	return http.DetectContentType(data)
}

// Attach sets data as the record's cover art. An empty mime is sniffed
// from the bytes.
func Attach(record *types.TrackRecord, data []byte, mime string) {
	if mime == "" {
		mime = SniffMIME(data)
	}
	record.CoverArt = &types.Picture{MIMEType: mime, Data: data}
}

// ExportJPEG decodes the picture and writes it to w as JPEG, downscaled so
// neither dimension exceeds maxDim. maxDim <= 0 keeps the original size.
func ExportJPEG(w io.Writer, pic *types.Picture, maxDim int) error {
	if pic == nil || len(pic.Data) == 0 {
		return errors.New("artwork: no picture data")
	}

	img, _, err := image.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		return fmt.Errorf("artwork: decode: %w", err)
	}

	if err := jpeg.Encode(w, shrink(img, maxDim), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("artwork: encode: %w", err)
	}
	return nil
}

func shrink(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(max(width, height))
	dst := image.NewRGBA(image.Rect(0, 0, scaled(width, scale), scaled(height, scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func scaled(dim int, scale float64) int {
	out := int(float64(dim)*scale + 0.5)
	if out < 1 {
		return 1
	}
	return out
}
