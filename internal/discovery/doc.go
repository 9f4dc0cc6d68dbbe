// Package discovery finds the numbered tracks of an audiobook.
//
// Tracks are expected at <base>/01.mp3?_=1, <base>/02.mp3?_=1 and so on.
// The Discoverer probes them one at a time and stops at the first track the
// server reports as missing:
//
//	d := discovery.NewDiscoverer(client, 0)
//	urls, err := d.Discover(ctx, book)
//
// Layouts with gaps (01, 02, 04) are not supported: discovery ends at 03.
// A probe failure that is not a confirmed "not found" aborts discovery with
// an error instead of ending it.
package discovery
