package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/render"
)

// convertHTMLPath is the Gotenberg route that prints an HTML page to PDF.
const convertHTMLPath = "/forms/chromium/convert/html"

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 512

// Exporter produces the PDF artifact for a rendered report.
type Exporter interface {
	Export(ctx context.Context, view render.View, html []byte) ([]byte, error)
}

// NewExporter returns a converter-backed exporter when a converter is
// configured and the built-in PDF writer otherwise.
func NewExporter(cfg *config.ConverterConfig) Exporter {
	if cfg.APIURL == "" {
		return NativeExporter{}
	}
	return NewConverterService(cfg)
}

// NativeExporter lays the report out with the built-in PDF writer.
type NativeExporter struct{}

func (NativeExporter) Export(_ context.Context, view render.View, _ []byte) ([]byte, error) {
	return render.PDF(view)
}

// ConverterService prints report markup to PDF through an HTML conversion
// service speaking the Gotenberg API.
type ConverterService struct {
	config     *config.ConverterConfig
	httpClient *http.Client
}

func NewConverterService(cfg *config.ConverterConfig) *ConverterService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ConverterService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *ConverterService) Export(ctx context.Context, _ render.View, html []byte) ([]byte, error) {
	return s.Convert(ctx, html)
}

// Convert uploads html as index.html and returns the printed PDF
func (s *ConverterService) Convert(ctx context.Context, html []byte) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := part.Write(html); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	url := strings.TrimRight(s.config.APIURL, "/") + convertHTMLPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, fmt.Errorf("converter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("converter response is not a PDF")
	}

	return data, nil
}
