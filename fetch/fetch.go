package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Download defaults.
const (
	DefaultMaxMB     = 50.0
	DefaultUserAgent = "cstone-estimating/1.0"
	DefaultTimeout   = 30 * time.Second

	chunkSize = 1 << 20
)

// Fetcher saves uploads and downloads remote inputs into a directory.
type Fetcher struct {
	client *http.Client
	ua     string
	maxMB  float64
	logger *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.ua = ua }
}

// WithMaxMB sets the download size cap in MiB.
func WithMaxMB(mb float64) Option {
	return func(f *Fetcher) { f.maxMB = mb }
}

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher with the service defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		ua:     DefaultUserAgent,
		maxMB:  DefaultMaxMB,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// MaxBytes returns the download size cap in bytes.
func (f *Fetcher) MaxBytes() int64 {
	return int64(f.maxMB * 1024 * 1024)
}

func (f *Fetcher) tooLarge() *InputError {
	return inputErrorf("Remote file exceeds %.0f MB limit.", f.maxMB)
}

// Input is what the client supplied for one Source. An upload takes
// precedence over a URL.
type Input struct {
	Filename string    // client file name of the upload
	File     io.Reader // upload content; nil when nothing was uploaded
	URL      string
}

// Provided reports whether the client supplied anything.
func (in Input) Provided() bool {
	return (in.File != nil && in.Filename != "") || in.URL != ""
}

// Save stores the input for src in dir and returns its path. When nothing
// was supplied it returns "" for optional sources and an *InputError for
// required ones.
func (f *Fetcher) Save(ctx context.Context, src Source, in Input, dir string) (string, error) {
	switch {
	case in.File != nil && in.Filename != "":
		name, err := src.UploadName(in.Filename)
		if err != nil {
			return "", err
		}
		dest := filepath.Join(dir, name)
		if err := saveUpload(in.File, dest); err != nil {
			return "", err
		}
		f.logger.Debug("saved upload", zap.String("input", src.Label), zap.String("path", dest))
		return dest, nil

	case in.URL != "":
		if err := src.CheckURL(in.URL); err != nil {
			return "", err
		}
		dest := filepath.Join(dir, src.Name)
		if err := f.Download(ctx, in.URL, dest); err != nil {
			return "", err
		}
		return dest, nil

	case src.Required:
		return "", src.missing()
	}
	return "", nil
}

func saveUpload(r io.Reader, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("fetch: creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("fetch: saving upload: %w", err)
	}
	return out.Close()
}

// Download GETs rawURL into dest. A declared Content-Length above the cap is
// rejected before reading; otherwise the body is streamed and the transfer
// aborted as soon as the running total exceeds the cap. dest is removed on
// failure.
func (f *Fetcher) Download(ctx context.Context, rawURL, dest string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &InputError{Msg: fmt.Sprintf("Failed to download file: %v", err), Err: err}
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return &InputError{Msg: fmt.Sprintf("Failed to download file: %v", err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return inputErrorf("Failed to download file: HTTP Error %d: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	limit := f.MaxBytes()
	if resp.ContentLength > limit {
		f.logger.Info("download rejected",
			zap.String("url", rawURL),
			zap.Int64("content_length", resp.ContentLength),
			zap.Int64("max_bytes", limit))
		return f.tooLarge()
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("fetch: creating %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("fetch: writing %s: %w", dest, cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > limit {
				f.logger.Info("download aborted",
					zap.String("url", rawURL),
					zap.Int64("read", total),
					zap.Int64("max_bytes", limit))
				return f.tooLarge()
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("fetch: writing %s: %w", dest, err)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return &InputError{Msg: fmt.Sprintf("Failed to download file: %v", rerr), Err: rerr}
		}
	}

	f.logger.Debug("downloaded", zap.String("url", rawURL), zap.Int64("bytes", total))
	return nil
}
