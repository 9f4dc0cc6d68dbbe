// Package download orchestrates fetching and merging an audiobook.
//
// # Manager
//
// The Manager drives one run through its stages:
//
//  1. Discover tracks 01, 02, ... until the first missing one
//  2. Download all tracks concurrently into the download directory
//  3. Merge them, in track order, into a single output file
//  4. Tag the output and write an optional playlist
//  5. Delete the per-track files
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	book := manager.NewAudiobook("https://host/x/Book", "")
//	result, err := manager.Run(ctx, book)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Empty {
//	    return
//	}
//
// # Failure Handling
//
// There are no retries. A transport error during discovery or download
// aborts the run before anything is merged. A merge error leaves the
// downloaded tracks on disk. Errors returned by Run wrap a *StageError.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent.
// Byte and file counters are available through GetProgress, and the current
// stage through Stage.
package download
