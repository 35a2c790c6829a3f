//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract keeps one libtesseract client alive across documents. The Engine
// mutex guarantees it is never used concurrently.
type Gosseract struct {
	client *gosseract.Client
}

func DefaultRecognizer(cfg Config) (Recognizer, error) {
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("set language %q: %w", cfg.Language, err)
		}
	}
	return &Gosseract{client: client}, nil
}

func (g *Gosseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := g.client.SetImage(imagePath); err != nil {
		return "", err
	}
	return g.client.Text()
}

func (g *Gosseract) Close() error {
	return g.client.Close()
}
