// Package model defines the data structures shared by the downloader.
//
// # Audiobook
//
// Audiobook holds the base location, the output name and computed paths:
//
//	book := model.NewAudiobook("https://host/x/Book", "", pathConfig)
//	fmt.Println(book.OutputPath) // audiobooks/Book.mp3
//	fmt.Println(book.TrackURL(1)) // https://host/x/Book/01.mp3?_=1
//
// # Track
//
// Track is one confirmed remote file and its transient local copy:
//
//	track := book.AddTrack(book.TrackURL(1))
//	fmt.Println(track.Path) // downloads/audio_01.mp3
//
// Nothing here outlives a single run.
package model
