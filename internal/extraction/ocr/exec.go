package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Pdftoppm rasterises pages with poppler's pdftoppm.
type Pdftoppm struct {
	Path string
	DPI  int
}

func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte, dir string, maxPages int) ([]string, error) {
	bin, err := exec.LookPath(p.Path)
	if err != nil {
		return nil, err
	}

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	dpi := p.DPI
	if dpi <= 0 {
		dpi = 200
	}
	args := []string{"-r", strconv.Itoa(dpi), "-png", "-f", "1", "-l", strconv.Itoa(maxPages), in, filepath.Join(dir, "page")}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(pages)
	return pages, nil
}

// TesseractCLI recognises an image by invoking the tesseract binary.
type TesseractCLI struct {
	Path     string
	Language string
}

func (t *TesseractCLI) Recognize(ctx context.Context, imagePath string) (string, error) {
	bin, err := exec.LookPath(t.Path)
	if err != nil {
		return "", err
	}

	args := []string{imagePath, "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

func (t *TesseractCLI) Close() error { return nil }
