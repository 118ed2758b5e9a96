package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const defaultResumeMaxBytes = 5 << 20

var (
	ErrInvalidResume  = errors.New("invalid parsed content")
	ErrResumeTooLarge = errors.New("resume too large")
)

var pdfMagic = []byte("%PDF-")

// TextExtractor saca texto plano de un documento (PDF u otro formato).
type TextExtractor interface {
	ExtractText(ctx context.Context, r io.Reader) (string, error)
}

// PlainTextExtractor acepta documentos que ya son texto UTF-8.
type PlainTextExtractor struct {
	MaxBytes int64
}

func (e PlainTextExtractor) ExtractText(_ context.Context, r io.Reader) (string, error) {
	data, err := readLimited(r, e.MaxBytes)
	if err != nil {
		return "", err
	}
	return plainText(data)
}

// PDFExtractor saca el texto de las paginas de un PDF.
type PDFExtractor struct {
	MaxBytes int64
}

func (e PDFExtractor) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	data, err := readLimited(r, e.MaxBytes)
	if err != nil {
		return "", err
	}
	return pdfText(ctx, data)
}

// DocumentExtractor elige PDF o texto plano segun la cabecera del documento.
type DocumentExtractor struct {
	MaxBytes int64
}

func (e DocumentExtractor) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	data, err := readLimited(r, e.MaxBytes)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return pdfText(ctx, data)
	}
	return plainText(data)
}

// readLimited lee hasta limit bytes; uno mas significa que el documento no entra.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = defaultResumeMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResumeTooLarge, limit)
	}
	return data, nil
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidResume
	}
	return sanitizeResumeText(string(data)), nil
}

func pdfText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// El parser entra en panic con algunos PDF corruptos.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrInvalidResume, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %w", ErrInvalidResume, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %w", ErrInvalidResume, err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %w", ErrInvalidResume, err)
	}
	return sanitizeResumeText(string(raw)), nil
}

// ExtractResume devuelve el texto del CV; un documento sin contenido util es un error.
func ExtractResume(ctx context.Context, extractor TextExtractor, r io.Reader) (string, error) {
	if r == nil {
		return "", nil
	}
	text, err := extractor.ExtractText(ctx, r)
	if err != nil {
		if errors.Is(err, ErrInvalidResume) || errors.Is(err, ErrResumeTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidResume, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrInvalidResume
	}
	return text, nil
}

// sanitizeResumeText deja letras, digitos, espacios, puntuacion y saltos de linea.
func sanitizeResumeText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t' || r == '\r':
			return ' '
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r), r == ' ':
			return r
		default:
			return -1
		}
	}, s)
}
