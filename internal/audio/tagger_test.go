package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/handiism/audiobook-downloader/internal/model"
)

func TestTagger_SaveTags(t *testing.T) {
	dir := t.TempDir()
	book := model.NewAudiobook("https://host/x/Book", "", &model.PathConfig{
		DownloadDir:    dir,
		OutputDir:      dir,
		TrackExtension: "mp3",
	})

	audioData := []byte("merged audio frames")
	if err := os.WriteFile(book.OutputPath, audioData, 0644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	tagger := NewTagger(&TagConfig{Artist: "Narrator", Genre: DefaultGenre, SourceComment: true})
	if err := tagger.SaveTags(book, []byte{0xff, 0xd8, 0xff}); err != nil {
		t.Fatalf("SaveTags failed: %v", err)
	}

	tag, err := id3v2.Open(book.OutputPath, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Book" {
		t.Errorf("Title = %q, want %q", tag.Title(), "Book")
	}
	if tag.Album() != "Book" {
		t.Errorf("Album = %q, want %q", tag.Album(), "Book")
	}
	if tag.Artist() != "Narrator" {
		t.Errorf("Artist = %q, want %q", tag.Artist(), "Narrator")
	}
	if pics := tag.GetFrames(tag.CommonID("Attached picture")); len(pics) != 1 {
		t.Errorf("got %d pictures, want 1", len(pics))
	}
	if comments := tag.GetFrames(tag.CommonID("Comments")); len(comments) != 1 {
		t.Errorf("got %d comments, want 1", len(comments))
	}
}

func TestTagger_AudioPreserved(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "Book.mp3")
	audioData := []byte("merged audio frames")
	if err := os.WriteFile(output, audioData, 0644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	book := &model.Audiobook{Name: "Book", OutputPath: output}
	if err := NewTagger(nil).SaveTags(book, nil); err != nil {
		t.Fatalf("SaveTags failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	start, err := id3v2Length(f)
	if err != nil {
		t.Fatalf("id3v2Length: %v", err)
	}
	if start == 0 {
		t.Fatal("expected an ID3v2 tag at the start of the file")
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(data[start:]); got != string(audioData) {
		t.Errorf("audio after tag = %q, want %q", got, audioData)
	}
}

func TestTagger_MissingFile(t *testing.T) {
	book := &model.Audiobook{Name: "Book", OutputPath: filepath.Join(t.TempDir(), "missing.mp3")}
	if err := NewTagger(nil).SaveTags(book, nil); err == nil {
		t.Error("expected error for missing output file")
	}
}
