package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// PDFRenderer turns an HTML document into PDF bytes.
// Failures are *ExternalToolError with one of the RENDERER_* codes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ExecPDFRenderer runs an external converter as `<BinaryPath> <input.html> <output.pdf>`
type ExecPDFRenderer struct {
	BinaryPath string
	Timeout    time.Duration
	TempDir    string // empty means os.TempDir()
	Logger     *zap.Logger
}

var pdfRendererInstance PDFRenderer

// GetPDFRenderer returns the configured renderer
func GetPDFRenderer() PDFRenderer {
	return pdfRendererInstance
}

// SetPDFRenderer sets the renderer (primarily for testing)
func SetPDFRenderer(renderer PDFRenderer) {
	pdfRendererInstance = renderer
}

// RenderPDF writes html to a temp file, runs the converter with a bounded wait and reads the result.
// Both temp files are removed on every return path.
func (r *ExecPDFRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	// Create the input and output temp files
	htmlFile, err := os.CreateTemp(r.TempDir, "invoice-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create html temp file: %w", err)
	}
	defer r.remove(htmlFile.Name())

	pdfFile, err := os.CreateTemp(r.TempDir, "invoice-*.pdf")
	if err != nil {
		_ = htmlFile.Close()
		return nil, fmt.Errorf("failed to create pdf temp file: %w", err)
	}
	defer r.remove(pdfFile.Name())
	_ = pdfFile.Close()

	// Write the invoice html
	if _, err := htmlFile.Write(html); err != nil {
		_ = htmlFile.Close()
		return nil, fmt.Errorf("failed to write html temp file: %w", err)
	}
	if err := htmlFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to write html temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	// Run the converter
	cmd := exec.CommandContext(ctx, r.BinaryPath, htmlFile.Name(), pdfFile.Name())
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()

	// Map the failure to a renderer error code
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, &ExternalToolError{Code: CodeRendererTimeout, Message: "PDF generation timed out.", Err: ctx.Err()}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil, &ExternalToolError{Code: CodeRendererNotFound, Message: "PDF renderer executable not found.", Err: err}
	case err != nil:
		r.logger().Warn("pdf renderer failed", zap.Error(err), zap.ByteString("output", output))
		return nil, &ExternalToolError{Code: CodeRendererFailed, Message: "Failed to generate PDF.", Err: err}
	}

	// Read the generated pdf
	pdf, err := os.ReadFile(pdfFile.Name())
	if err != nil {
		return nil, &ExternalToolError{Code: CodeRendererFailed, Message: "Failed to generate PDF.", Err: err}
	}
	return pdf, nil
}

func (r *ExecPDFRenderer) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger().Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
	}
}

func (r *ExecPDFRenderer) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
