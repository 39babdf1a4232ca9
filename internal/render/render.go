// Package render encodes visualization artifacts for the UI layer.
package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
)

// EncodeJPEGBase64 serializes an image as a base64 JPEG payload, the form
// the UI consumes directly. Returns an empty string if encoding fails; a
// missing visual is never worth failing the analysis over.
func EncodeJPEGBase64(img image.Image) string {
	if img == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
