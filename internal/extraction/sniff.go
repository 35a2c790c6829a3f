package extraction

import (
	"archive/zip"
	"bytes"
	"mime"
	"path/filepath"
	"strings"

	"resume-matcher/internal/common/errors"
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// Sniff decides how an upload is read. A declared type (MIME or extension)
// must agree with the file's magic bytes; an undeclared upload is classified
// by content alone.
func Sniff(data []byte, fileName, contentType string) (Kind, error) {
	declared := declaredKind(fileName, contentType)
	actual := contentKind(data)

	switch {
	case declared == "" && actual == "":
		return "", errors.NewUnsupportedFileTypeError(describe(fileName, contentType))
	case declared == "":
		return actual, nil
	case declared != actual:
		return "", errors.NewUnsupportedFileTypeError(describe(fileName, contentType))
	}
	return declared, nil
}

func declaredKind(fileName, contentType string) Kind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "application/pdf", "application/x-pdf":
		return KindPDF
	case docxMIME:
		return KindDOCX
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	}
	return ""
}

func contentKind(data []byte) Kind {
	trimmed := bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\r\n ")
	if bytes.HasPrefix(trimmed, pdfMagic) {
		return KindPDF
	}
	if bytes.HasPrefix(data, zipMagic) && isWordDocument(data) {
		return KindDOCX
	}
	return ""
}

func isWordDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

func describe(fileName, contentType string) string {
	switch {
	case contentType != "" && fileName != "":
		return contentType + " (" + fileName + ")"
	case contentType != "":
		return contentType
	}
	return fileName
}
