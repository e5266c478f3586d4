package invoice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/rs/zerolog"
)

// maxLogoBytes caps the remote logo download.
const maxLogoBytes = 2 << 20

// LogoFetcher downloads the company logo for embedding into the vector
// document. It is strictly best effort: any failure, unsupported format
// or timeout is reported to the caller, who degrades to a text header.
type LogoFetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewLogoFetcher(timeout time.Duration, logger *zerolog.Logger) *LogoFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LogoFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch retrieves the logo within the configured deadline. The bound
// holds even when the parent context has no deadline of its own, so
// document generation is never blocked past it.
func (f *LogoFetcher) Fetch(ctx context.Context, url string) ([]byte, extension.Type, error) {
	if url == "" {
		return nil, "", fmt.Errorf("no logo url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build logo request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read logo body: %w", err)
	}

	ext, err := detectImageType(data)
	if err != nil {
		return nil, "", err
	}

	return data, ext, nil
}

func detectImageType(data []byte) (extension.Type, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return extension.Png, nil
	case "image/jpeg":
		return extension.Jpg, nil
	default:
		return "", fmt.Errorf("unsupported logo content type")
	}
}
