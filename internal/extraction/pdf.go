package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// Strategy is one stage of the PDF cascade. A returned error is never fatal;
// the cascade treats it as empty output.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

const (
	StagePdftotext = "pdftotext"
	StagePlainText = "pdf-plaintext"
	StagePageText  = "pdf-pagetext"
	StageOCR       = "ocr"
	StageDOCX      = "docx"
)

// Pdftotext runs the poppler pdftotext CLI over a temp copy of the upload.
type Pdftotext struct {
	Path    string
	Timeout time.Duration
	TempDir string
}

func (p *Pdftotext) Name() string { return StagePdftotext }

func (p *Pdftotext) Extract(ctx context.Context, data []byte) (string, error) {
	path, err := exec.LookPath(p.Path)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(p.TempDir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("pdftotext timed out after %s", p.Timeout)
	}
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// PlainText reads the document's text-showing operators in one pass.
type PlainText struct{}

func (PlainText) Name() string { return StagePlainText }

func (PlainText) Extract(_ context.Context, data []byte) (text string, err error) {
	defer recoverParse(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PageText walks each page's content stream and rebuilds lines from the
// positioned text runs.
type PageText struct{}

func (PageText) Name() string { return StagePageText }

func (PageText) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer recoverParse(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, t := range row.Content {
				if s := strings.TrimSpace(t.S); s != "" {
					words = append(words, s)
				}
			}
			if len(words) > 0 {
				sb.WriteString(strings.Join(words, " "))
				sb.WriteByte('\n')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// recoverParse turns a panic inside the pdf library into an error.
func recoverParse(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf parse panic: %v", r)
	}
}
