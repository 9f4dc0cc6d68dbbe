package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent is sent when no User-Agent is configured.
const DefaultUserAgent = "AudiobookDownloader"

// ClientConfig holds transport settings for a Client.
type ClientConfig struct {
	// UserAgent is sent with every request. Empty means DefaultUserAgent.
	UserAgent string

	// Timeout bounds each request. Zero leaves the transport defaults in place.
	Timeout time.Duration

	// Headers are added to every request.
	Headers map[string]string
}

// Client wraps the HTTP operations the downloader needs:
//   - existence probes via HEAD requests
//   - streamed file downloads with progress tracking
//   - small in-memory downloads (cover art)
//
// Example usage:
//
//	client := NewClient(ClientConfig{})
//
//	ok, err := client.Probe(ctx, "https://host/x/Book/01.mp3?_=1")
//	if err != nil {
//	    return err // anything other than "not found"
//	}
//
//	err = client.DownloadFile(ctx, trackURL, "downloads/audio_01.mp3", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

// NewClient creates a new Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: userAgent,
		headers:   cfg.Headers,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length), -1 if unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Probe reports whether the resource at url exists, using a HEAD request.
//
// A 200 response means the resource exists. A 404 response, or any other
// 2xx response, means it is absent and Probe returns (false, nil).
// Every other status and every transport failure returns a *TransportError;
// callers must treat that as fatal rather than as "absent".
func (c *Client) Probe(ctx context.Context, url string) (bool, error) {
	err := c.head(ctx, url)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// head issues a HEAD request. It returns ErrNotFound for a 404 or a
// non-200 success status.
func (c *Client) head(ctx context.Context, url string) error {
	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ErrNotFound
	default:
		return &TransportError{URL: url, StatusCode: resp.StatusCode}
	}
}

// Get performs a GET request and returns the response body.
//
// Any non-2xx status is returned as a *TransportError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return body, nil
}

// DownloadFile streams the resource at url into destPath.
//
// The file is created (or truncated if it exists). onProgress may be nil.
// Any failure, including a non-2xx status, is returned as a *TransportError
// unless it happened on the local filesystem.
//
//	err := client.DownloadFile(ctx, trackURL, "downloads/audio_01.mp3", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return &TransportError{URL: url, Err: err}
	}
	return file.Close()
}

// DownloadBytes downloads a small resource into memory.
//
// Use this for cover art. For tracks, use DownloadFile.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", method, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
