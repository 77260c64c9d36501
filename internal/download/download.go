// Package download streams a backup archive from a pre-signed panel link to disk.
package download

import (
	"context"
	"fmt"
	"io"
	"iter"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atbphosting/clumsyloader/internal/panel"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultChunkSize is the read buffer used when streaming the body
	DefaultChunkSize = 32 * 1024

	// maxRejectBody bounds how much of an error page is read into a RejectedError
	maxRejectBody = 64 * 1024
)

// Progress receives byte counts while an archive is written. Exactly one of
// Finish or Abort is called once writing stops.
type Progress interface {
	Set(done uint64)
	Finish()
	Abort()
}

// Result describes a finished download
type Result struct {
	Path     string
	Written  uint64 // bytes actually written
	Expected uint64 // size reported by the panel, may be approximate
}

// Engine downloads one archive at a time into a directory
type Engine struct {
	httpClient  *http.Client
	dir         string
	chunkSize   int
	newProgress func(total uint64) Progress
}

// Option configures an Engine
type Option func(*Engine)

// WithHTTPClient replaces the default http.Client. No timeout is set by default.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Engine) { e.httpClient = hc }
}

// WithDir sets the destination directory (default: working directory)
func WithDir(dir string) Option {
	return func(e *Engine) { e.dir = dir }
}

// WithChunkSize sets the read buffer size
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithProgress sets the factory for the progress indicator of each download
func WithProgress(fn func(total uint64) Progress) Option {
	return func(e *Engine) { e.newProgress = fn }
}

// NewEngine returns an Engine writing into the working directory unless
// WithDir says otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		httpClient:  &http.Client{},
		dir:         ".",
		chunkSize:   DefaultChunkSize,
		newProgress: func(uint64) Progress { return nopProgress{} },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// canonicalUUIDLen is the length of the dashed 8-4-4-4-12 form
const canonicalUUIDLen = 36

// ArchiveName returns the file name used for a backup, the UUID as the panel
// sent it plus ".tar.gz". Only the dashed form is accepted, so panel data can
// never put a path separator into the name.
func ArchiveName(backupUUID string) (string, error) {
	if len(backupUUID) != canonicalUUIDLen {
		return "", fmt.Errorf("invalid backup uuid %q: want the %d-character dashed form", backupUUID, canonicalUUIDLen)
	}
	if err := uuid.Validate(backupUUID); err != nil {
		return "", fmt.Errorf("invalid backup uuid %q: %w", backupUUID, err)
	}
	return backupUUID + ".tar.gz", nil
}

// Fetch downloads the archive served at link into {dir}/{backupUUID}.tar.gz.
// total is the size reported by the panel and only drives the progress indicator.
// On failure after the file was opened, the partial file is left on disk.
func (e *Engine) Fetch(ctx context.Context, link, backupUUID string, total uint64) (*Result, error) {
	name, err := ArchiveName(backupUUID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(e.dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &panel.TransportError{Op: "download", URL: redact(link), Err: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Uint64("expected", total).Msg("starting download")

	written, err := e.Write(ctx, path, Chunks(resp.Body, e.chunkSize), total)
	if err != nil {
		return nil, err
	}

	if written != total {
		log.Debug().Uint64("written", written).Uint64("expected", total).Msg("archive size differs from panel-reported size")
	}
	log.Debug().Str("path", path).Uint64("written", written).Msg("download finished")

	return &Result{Path: path, Written: written, Expected: total}, nil
}

// Write creates (or truncates) path and appends every chunk to it, reporting
// the running byte count. It returns the number of bytes written.
func (e *Engine) Write(ctx context.Context, path string, chunks iter.Seq2[[]byte, error], total uint64) (uint64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, &panel.IOError{Path: path, Err: err}
	}

	progress := e.newProgress(total)
	var downloaded uint64

	for chunk, err := range chunks {
		if err != nil {
			f.Close()
			progress.Abort()
			return downloaded, &panel.TransportError{Op: "reading archive", Err: err}
		}
		if err := ctx.Err(); err != nil {
			f.Close()
			progress.Abort()
			return downloaded, err
		}
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			progress.Abort()
			return downloaded, &panel.IOError{Path: path, Err: err}
		}
		downloaded += uint64(len(chunk))
		progress.Set(downloaded)
	}

	if err := f.Close(); err != nil {
		progress.Abort()
		return downloaded, &panel.IOError{Path: path, Err: err}
	}
	progress.Finish()
	return downloaded, nil
}

// Chunks yields successive reads from r. The yielded slice is reused between
// iterations, so consumers must not keep it. The sequence ends at io.EOF or
// after yielding the first read error.
func Chunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// checkResponse rejects error pages served in place of the archive
func checkResponse(resp *http.Response) error {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	isHTML := mediaType == "text/html"
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok && !isHTML {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRejectBody))
	if err != nil {
		return &panel.TransportError{Op: "download", URL: redact(resp.Request.URL.String()), Err: err}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return &panel.RejectedError{Status: resp.StatusCode, Message: msg}
}

// redact drops the query string, which carries the link's signature
func redact(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		return link[:i]
	}
	return link
}

type nopProgress struct{}

func (nopProgress) Set(uint64) {}
func (nopProgress) Finish()    {}
func (nopProgress) Abort()     {}
