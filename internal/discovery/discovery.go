package discovery

import (
	"context"
	"fmt"

	"github.com/handiism/audiobook-downloader/internal/model"
)

// Prober checks whether a candidate track location exists.
//
// Probe must return (false, nil) only for a confirmed absence. Any other
// failure must be returned as an error; Discover never treats it as the end
// of the book.
type Prober interface {
	Probe(ctx context.Context, url string) (bool, error)
}

// Result is reported to the observer after every probe.
type Result struct {
	Number int
	URL    string
	Found  bool
}

// Discoverer finds the maximal contiguous run of existing tracks starting
// at track 1.
//
// Discovery is strictly sequential: track N+1 is only probed after track N
// was confirmed, and the loop stops at the first absent track. Tracks after
// a gap are never looked at.
//
// Example usage:
//
//	d := NewDiscoverer(client, 0)
//	urls, err := d.Discover(ctx, book)
//	if err != nil {
//	    return err // transport failure, not "absent"
//	}
//	for _, u := range urls {
//	    book.AddTrack(u)
//	}
type Discoverer struct {
	prober    Prober
	maxTracks int
	observer  func(Result)
}

// NewDiscoverer creates a Discoverer.
//
// maxTracks caps the number of confirmed tracks; zero or less means no cap.
func NewDiscoverer(prober Prober, maxTracks int) *Discoverer {
	return &Discoverer{
		prober:    prober,
		maxTracks: maxTracks,
	}
}

// OnProbe registers a callback invoked after every probe.
func (d *Discoverer) OnProbe(observer func(Result)) {
	d.observer = observer
}

// Discover probes book.TrackURL(1), book.TrackURL(2), ... and returns the
// confirmed locations in ascending order.
//
// An empty result with a nil error means track 1 itself is absent.
func (d *Discoverer) Discover(ctx context.Context, book *model.Audiobook) ([]string, error) {
	var urls []string
	for n := 1; d.maxTracks <= 0 || n <= d.maxTracks; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := book.TrackURL(n)
		found, err := d.prober.Probe(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("probe track %s: %w", model.TrackNumber(n), err)
		}

		d.notify(Result{Number: n, URL: url, Found: found})
		if !found {
			break
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (d *Discoverer) notify(r Result) {
	if d.observer != nil {
		d.observer(r)
	}
}
