package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"testing"
)

func TestEncodeJPEGBase64(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	encoded := EncodeJPEGBase64(img)
	if encoded == "" {
		t.Fatal("expected a payload")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a valid JPEG: %v", err)
	}
	if got := decoded.Bounds(); got != img.Bounds() {
		t.Errorf("bounds = %v, want %v", got, img.Bounds())
	}
}

func TestEncodeJPEGBase64Nil(t *testing.T) {
	if got := EncodeJPEGBase64(nil); got != "" {
		t.Errorf("EncodeJPEGBase64(nil) = %q, want empty", got)
	}
}
