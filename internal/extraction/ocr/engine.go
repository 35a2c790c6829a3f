// Package ocr reads text from image-only PDFs by rasterising pages and running
// them through tesseract.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/logger"
)

var ErrClosed = errors.New("ocr engine closed")

type Config struct {
	RasterizerPath string
	TesseractPath  string
	Language       string
	DPI            int
	MaxPages       int
	Timeout        time.Duration
	TempDir        string
}

func ConfigFrom(cfg config.ExtractionConfig) Config {
	return Config{
		RasterizerPath: cfg.OCR.RasterizerPath,
		TesseractPath:  cfg.OCR.TesseractPath,
		Language:       cfg.OCR.Language,
		DPI:            cfg.OCR.DPI,
		MaxPages:       cfg.OCR.MaxPages,
		Timeout:        time.Duration(cfg.OCR.Timeout) * time.Millisecond,
		TempDir:        cfg.TempDir,
	}
}

// Rasterizer renders the first maxPages pages of a PDF into image files under
// dir and returns their paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, dir string, maxPages int) ([]string, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Close() error
}

type RecognizerFactory func(cfg Config) (Recognizer, error)

// Engine serialises OCR work: one document at a time, with the recognizer
// created on first use and kept until Close.
type Engine struct {
	cfg           Config
	rasterizer    Rasterizer
	newRecognizer RecognizerFactory
	logger        logger.Logger

	mu         sync.Mutex
	recognizer Recognizer
	closed     bool
}

func NewEngine(cfg Config, log logger.Logger) *Engine {
	return NewEngineWith(cfg, &Pdftoppm{Path: cfg.RasterizerPath, DPI: cfg.DPI}, DefaultRecognizer, log)
}

func NewEngineWith(cfg Config, rasterizer Rasterizer, factory RecognizerFactory, log logger.Logger) *Engine {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return &Engine{
		cfg:           cfg,
		rasterizer:    rasterizer,
		newRecognizer: factory,
		logger:        log.WithFields(map[string]interface{}{"component": "ocr"}),
	}
}

func (e *Engine) Name() string { return "ocr" }

// Extract returns the recognised text of up to MaxPages pages, pages separated
// by a blank line.
func (e *Engine) Extract(ctx context.Context, data []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrClosed
	}
	if e.recognizer == nil {
		rec, err := e.newRecognizer(e.cfg)
		if err != nil {
			return "", fmt.Errorf("init recognizer: %w", err)
		}
		e.recognizer = rec
		e.logger.Info("OCR recognizer initialised", map[string]interface{}{
			"language": e.cfg.Language,
		})
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp(e.cfg.TempDir, "resume-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pages, err := e.rasterizer.Rasterize(ctx, data, dir, e.cfg.MaxPages)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	if len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return strings.Join(texts, "\n\n"), err
		}
		text, err := e.recognizer.Recognize(ctx, page)
		if err != nil {
			e.logger.Warn("OCR failed for page", map[string]interface{}{
				"page":  i + 1,
				"error": err.Error(),
			})
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	e.logger.Debug("OCR finished", map[string]interface{}{
		"pages":     len(pages),
		"pagesRead": len(texts),
	})
	return strings.Join(texts, "\n\n"), nil
}

// Close releases the recognizer. Extract fails with ErrClosed afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.recognizer == nil {
		return nil
	}
	err := e.recognizer.Close()
	e.recognizer = nil
	return err
}
