package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docchat/docchat/internal/pkg/errs"
)

// thresholds for the OCR fallback: near-empty native extraction triggers
// OCR, and an OCR result is only trusted when it carries some substance.
const (
	ocrTriggerChars = 50
	ocrAcceptChars  = 20
)

// OCR recognizes text in a scanned document. It is an external
// collaborator; the service runs without one configured.
type OCR interface {
	Recognize(ctx context.Context, data []byte) (string, error)
}

// Extractor pulls raw text out of an uploaded PDF, optionally falling
// back to OCR for scanned documents.
type Extractor struct {
	ocr OCR
}

func NewExtractor(ocr OCR) *Extractor {
	return &Extractor{ocr: ocr}
}

// Text returns the raw document text. Native extraction wins whenever it
// produces something usable; OCR output replaces it only when the native
// text is near-empty and the OCR result is substantial. A document with
// no usable text either way fails with an extraction error.
func (e *Extractor) Text(ctx context.Context, data []byte) (string, error) {
	text, err := PDFText(data)
	if err != nil {
		return "", err
	}
	return e.fallback(ctx, text, data)
}

func (e *Extractor) fallback(ctx context.Context, text string, data []byte) (string, error) {
	if len(strings.TrimSpace(text)) >= ocrTriggerChars {
		return text, nil
	}
	if e.ocr != nil {
		logutil.GetLogger(ctx).Info("native extraction near-empty, trying ocr",
			zap.Int("native_chars", len(text)))
		ocrText, ocrErr := e.ocr.Recognize(ctx, data)
		if ocrErr != nil {
			logutil.GetLogger(ctx).Warn("ocr failed, keeping native text", zap.Error(ocrErr))
		} else if len(strings.TrimSpace(ocrText)) > ocrAcceptChars {
			return ocrText, nil
		}
	}
	// prefer whatever partial text exists over a hard failure
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	return "", fmt.Errorf("%w: no text found in pdf, possibly scanned or protected", errs.ErrExtraction)
}
