package coverart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cdrip/internal/album"
	"cdrip/internal/fileutil"
	"cdrip/internal/logging"
	"cdrip/internal/services"
)

const (
	// DefaultTimeout bounds one download.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBytes caps the body read from the archive.
	DefaultMaxBytes = 32 << 20

	stageCover = "cover_art"
	baseName   = "folder"
)

// Image is a downloaded cover.
type Image struct {
	Path        string
	ContentType string
	Data        []byte
}

// Fetcher downloads front covers.
type Fetcher struct {
	userAgent    string
	httpClient   *http.Client
	logger       *slog.Logger
	maxDimension int
	maxBytes     int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMaxDimension downscales covers whose longest side exceeds px.
func WithMaxDimension(px int) Option {
	return func(f *Fetcher) {
		if px > 0 {
			f.maxDimension = px
		}
	}
}

// WithMaxBytes overrides the largest cover body accepted.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New creates a Fetcher sending userAgent on every request.
func New(userAgent string, opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "cover_art")
	return f
}

// Fetch downloads the album's cover into dir and returns the written path.
// An album without a cover URL is a no-op returning "".
func (f *Fetcher) Fetch(ctx context.Context, al album.Album, dir string) (string, error) {
	img, err := f.FetchImage(ctx, al, dir)
	return img.Path, err
}

// FetchImage is Fetch returning the written bytes as well.
func (f *Fetcher) FetchImage(ctx context.Context, al album.Album, dir string) (Image, error) {
	if !al.HasCoverArt() {
		return Image{}, nil
	}
	logger := logging.WithContext(ctx, f.logger).With(logging.String("url", al.CoverArtURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, al.CoverArtURL, nil)
	if err != nil {
		return Image{}, services.Wrap(services.ErrConfiguration, stageCover, "build request", "", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Image{}, services.Wrap(services.ErrTransport, stageCover, "execute request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		marker := services.ErrTransport
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		return Image{}, services.Wrap(marker, stageCover, "download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, services.Wrap(services.ErrTransport, stageCover, "read body", "", err)
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, services.Wrap(services.ErrTransport, stageCover, "read body", fmt.Sprintf("cover exceeds limit of %d bytes", f.maxBytes), nil)
	}

	contentType := normalizedContentType(resp.Header.Get("Content-Type"))
	if f.maxDimension > 0 {
		resized, changed, err := Downscale(data, f.maxDimension)
		if err != nil {
			logger.Debug("cover left at original size", logging.Error(err))
		} else if changed {
			data = resized
			contentType = "image/jpeg"
		}
	}

	path := filepath.Join(dir, baseName+"."+ExtensionFor(contentType))
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return Image{}, services.Wrap(services.ErrLocalIO, stageCover, "write cover", "", err)
	}
	logger.Info("cover art saved",
		logging.String("path", path),
		logging.String("content_type", contentType),
		logging.Int("bytes", len(data)),
	)
	return Image{Path: path, ContentType: mimeFor(contentType), Data: data}, nil
}

// ExtensionFor maps a Content-Type to the cover file extension.
func ExtensionFor(contentType string) string {
	switch normalizedContentType(contentType) {
	case "image/png":
		return "png"
	default:
		return "jpg"
	}
}

func normalizedContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// mimeFor returns the MIME type recorded in an embedded PICTURE block.
func mimeFor(contentType string) string {
	if ExtensionFor(contentType) == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
