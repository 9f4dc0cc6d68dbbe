// Package audio joins downloaded tracks into one file and annotates it.
//
// # Merging
//
// A Merger joins files in the given order:
//
//	merger, err := audio.NewMerger("ffmpeg", "")
//	err = merger.Merge(ctx, []string{"downloads/audio_01.mp3", "downloads/audio_02.mp3"}, "audiobooks/Book.mp3")
//
// Two implementations exist:
//   - FFmpegMerger runs ffmpeg's concat demuxer with stream copy
//   - ConcatMerger appends MP3 frame data natively, dropping per-file ID3 tags
//
// Every failure is returned as a *MergeError.
//
// # ID3 Tagging
//
// The Tagger names the merged file after the audiobook:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(book, coverJPEG)
//
// # Playlist Generation
//
// PlaylistCreator lists the remote track URLs as M3U or PLS:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(book)
package audio
