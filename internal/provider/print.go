package provider

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
	"github.com/otiai10/gosseract/v2"

	"go-currency-guardian/internal/logger"
)

// TextRecognizer extracts printed text from an image. Implementations
// return an empty string on recognition failure, never an error that
// aborts the analysis.
type TextRecognizer interface {
	RecognizeText(img image.Image) (string, error)
}

// PrintDetail carries the OCR evidence behind the print signal.
type PrintDetail struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text,omitempty"`
	MatchScore    float64 `json:"match_score,omitempty"`
	WER           float64 `json:"word_error_rate,omitempty"`
}

// PrintDetector verifies print authenticity through OCR: genuine notes carry
// legible serial numbers and denomination text. Raw value is the extracted
// text length in characters.
type PrintDetector struct {
	recognizer TextRecognizer
}

func NewPrintDetector(recognizer TextRecognizer) *PrintDetector {
	return &PrintDetector{recognizer: recognizer}
}

// Detect runs OCR over a binarized copy of the image. When the recognizer
// fails the signal degrades to an empty-text sentinel rather than aborting.
// An optional expected text (serial number, denomination) adds a match
// score and word error rate to the detail.
func (d *PrintDetector) Detect(img image.Image, expectedText string) (Measurement, PrintDetail) {
	text, err := d.recognizer.RecognizeText(binarize(img))
	if err != nil {
		logger.WithError(err).Warn("OCR engine failed, print signal degraded")
		return Measurement{Raw: 0, Degraded: true}, PrintDetail{ExpectedText: expectedText}
	}

	text = strings.TrimSpace(text)
	detail := PrintDetail{
		ExtractedText: text,
		ExpectedText:  expectedText,
	}
	if expectedText != "" {
		detail.MatchScore = matchScore(text, expectedText)
		detail.WER = wordErrorRate(text, expectedText)
	}

	return Measurement{Raw: float64(len(text))}, detail
}

// binarize thresholds the grayscale image the way the OCR stage expects:
// mid-tone cut at 150 to isolate dark print from the note background.
func binarize(img image.Image) *image.Gray {
	gray := toGray(img)
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > 150 {
				gray.SetGray(x, y, color.Gray{Y: 255})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return gray
}

// matchScore maps the Levenshtein distance between extracted and expected
// text to [0, 1], 1 being an exact match.
func matchScore(extracted, expected string) float64 {
	a := strings.ToLower(extracted)
	b := strings.ToLower(expected)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func wordErrorRate(extracted, expected string) float64 {
	ref := strings.Fields(strings.ToLower(expected))
	hyp := strings.Fields(strings.ToLower(extracted))
	if len(ref) == 0 {
		return 0
	}
	rate, _ := wer.WER(ref, hyp)
	return rate
}

// TesseractRecognizer is the production TextRecognizer backed by a
// Tesseract client. Each call uses a fresh client: gosseract clients are
// not safe for concurrent use and requests are independent.
type TesseractRecognizer struct {
	Language string
}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{Language: "eng"}
}

func (t *TesseractRecognizer) RecognizeText(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return "", err
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}
	return client.Text()
}
