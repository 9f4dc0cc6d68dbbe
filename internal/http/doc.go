// Package http provides the HTTP client used to probe and fetch tracks.
//
// The Client in this package handles:
//   - existence probes via HEAD requests
//   - streamed file downloads with progress tracking
//   - User-Agent and custom headers
//   - an optional request timeout
//
// # Probe semantics
//
// Probe distinguishes "confirmed absent" from "failed":
//
//	ok, err := client.Probe(ctx, url)
//	switch {
//	case err != nil: // *TransportError, abort the run
//	case !ok:        // 404, stop discovery
//	default:         // 200, the track exists
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can wrap any io.Writer:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
