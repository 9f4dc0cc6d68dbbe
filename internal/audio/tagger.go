package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/handiism/audiobook-downloader/internal/model"
)

// DefaultGenre is written to the TCON frame of merged audiobooks.
const DefaultGenre = "Audiobook"

// TagConfig controls which ID3 frames the Tagger writes.
//
//	cfg := &TagConfig{
//	    Artist:        "J. R. R. Tolkien",
//	    Genre:         DefaultGenre,
//	    SourceComment: true,
//	}
type TagConfig struct {
	// Artist is written to TPE1 and TPE2 when not empty.
	Artist string

	// Genre is written to TCON when not empty.
	Genre string

	// SourceComment stores the audiobook base URL in a COMM frame.
	SourceComment bool
}

// DefaultTagConfig returns the default tag configuration.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Genre:         DefaultGenre,
		SourceComment: true,
	}
}

// Tagger writes ID3 tags to the merged audiobook file.
//
// The title and album frames are both set to the audiobook name, so players
// group the single file correctly.
//
//	tagger := NewTagger(DefaultTagConfig())
//	if err := tagger.SaveTags(book, coverJPEG); err != nil {
//	    log.Printf("Failed to tag %s: %v", book.OutputPath, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger. A nil config means DefaultTagConfig().
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to book.OutputPath.
//
// Tags inherited from the first track (the concat merger keeps none, ffmpeg
// may copy them) are replaced. artwork may be nil.
func (t *Tagger) SaveTags(book *model.Audiobook, artwork []byte) error {
	tag, err := id3v2.Open(book.OutputPath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", book.OutputPath, err)
	}
	defer tag.Close()

	t.updateStringTags(tag, book)

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, book *model.Audiobook) {
	tag.SetTitle(book.Name)
	tag.SetAlbum(book.Name)

	// Per-track numbering makes no sense for the merged file.
	tag.DeleteFrames("TRCK")

	if t.config.Artist != "" {
		tag.SetArtist(t.config.Artist)
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, t.config.Artist)
	}

	if t.config.Genre != "" {
		tag.SetGenre(t.config.Genre)
	}

	if t.config.SourceComment && book.BaseURL != "" {
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "Source",
			Text:        book.BaseURL,
		})
	}
}

// updateArtwork embeds cover art as the front cover picture.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
