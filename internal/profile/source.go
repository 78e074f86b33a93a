package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrResumeUnavailable signals that no usable resume text could be obtained.
// It blocks session creation.
var ErrResumeUnavailable = errors.New("resume is unavailable")

var errEmptyInput = errors.New("input text is empty")

// LoadResumeText reads the resume source and returns its plain text. PDF
// files are extracted page by page, any other file is read verbatim.
func LoadResumeText(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrResumeUnavailable
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrResumeUnavailable, path)
	}

	var (
		text string
		err  error
	)

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDFText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}

	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrResumeUnavailable, path, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", ErrResumeUnavailable, path)
	}

	return text, nil
}

func extractPDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}

	return buf.String(), nil
}
