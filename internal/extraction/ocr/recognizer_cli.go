//go:build !ocr

package ocr

// DefaultRecognizer shells out to tesseract. Build with -tags ocr to link
// libtesseract through gosseract instead.
func DefaultRecognizer(cfg Config) (Recognizer, error) {
	return &TesseractCLI{Path: cfg.TesseractPath, Language: cfg.Language}, nil
}
