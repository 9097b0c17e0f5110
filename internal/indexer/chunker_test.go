package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/kensho/internal/embedding"
)

// filler returns n space-separated copies of word: no sentence boundaries.
func filler(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

// topicEmbedder maps sentences mentioning "sea" and "land" to orthogonal vectors.
func topicEmbedder() *embedding.FuncEmbedder {
	return embedding.NewFuncEmbedder(2, func(text string) ([]float32, error) {
		switch {
		case strings.Contains(text, "poison"):
			return nil, errors.New("embedding backend rejected input")
		case strings.Contains(text, "explode"):
			panic("tokenizer blew up")
		case strings.Contains(text, "sea"):
			return []float32{1, 0}, nil
		case strings.Contains(text, "land"):
			return []float32{0, 1}, nil
		}
		return []float32{1, 1}, nil
	})
}

func TestSplitter_ShortParagraphsDropped(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	text := "Too short.\n\n" + filler("lorem", 50) + "\n\nAlso short"
	got, err := s.Split(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	for _, c := range got {
		if utf8.RuneCountInString(strings.TrimSpace(c.Text)) < 200 {
			t.Errorf("chunk shorter than 200 characters: %q", c.Text)
		}
	}
}

func TestSplitter_SemanticBoundaries(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	sea1 := "The sea " + filler("wave", 25) + "."
	sea2 := "Again the sea " + filler("tide", 25) + "."
	land1 := "Then the land " + filler("hill", 25) + "."
	land2 := "Still the land " + filler("rock", 25) + "."
	paragraph := strings.Join([]string{sea1, sea2, land1, land2}, " ")

	got, err := s.Split(context.Background(), paragraph)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(got), got)
	}
	if got[0].Text != sea1+" "+sea2 {
		t.Errorf("first chunk = %q", got[0].Text)
	}
	if got[1].Text != land1+" "+land2 {
		t.Errorf("second chunk = %q", got[1].Text)
	}
}

func TestSplitter_KeepsParagraphTextVerbatim(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	para := "    " + filler("calm", 60) + "  "
	got, err := s.Split(context.Background(), "\n\n"+para+"\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != para {
		t.Fatalf("chunks = %+v, want the untrimmed paragraph", got)
	}
}

func TestSplitter_FailingParagraphSkipped(t *testing.T) {
	emb := topicEmbedder()
	s := NewSplitter(emb, DefaultSplitterOptions(), nil)
	good := filler("calm", 60)
	poisoned := "The sea is poison " + filler("x", 100) + ". And more " + filler("y", 100) + "."
	exploding := "This will explode " + filler("z", 100) + ". Then " + filler("w", 100) + "."
	text := strings.Join([]string{good, poisoned, exploding, good}, "\n\n")

	got, err := s.Split(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the two good paragraphs only, got %d", len(got))
	}
	for _, c := range got {
		if c.Text != good {
			t.Errorf("unexpected chunk %q", c.Text)
		}
	}
}

func TestSplitter_CancelledContext(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Split(ctx, filler("lorem", 60)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSplitter_OversizedChunkWindowed(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	long := strings.Repeat("abcdefghi ", 250) // 2500 characters
	got, err := s.Split(context.Background(), long)
	if err != nil {
		t.Fatal(err)
	}
	// Trimmed paragraph is 2499 characters: windows at 0, 700, 1400, 2100.
	if len(got) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(got))
	}
	for i, c := range got {
		if n := utf8.RuneCountInString(c.Text); n > 1000 {
			t.Errorf("window %d has %d characters", i, n)
		}
	}
}

func TestSplitter_TrailingRemainderDropped(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	text := strings.Repeat("x", 1500)
	got, err := s.Split(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	// Windows at 0 (1000), 700 (800) and 1400 (100); the last is below 200 and dropped.
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if utf8.RuneCountInString(got[1].Text) != 800 {
		t.Errorf("second window length = %d", utf8.RuneCountInString(got[1].Text))
	}
}

func TestSplitter_ChapterTaggingIsSticky(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	prologue := filler("mist", 60)
	chapterTwo := "CHAPTER II\n" + filler("ship", 60)
	body := filler("harbour", 40)
	late := filler("late", 70) + " Chapter IX " + filler("end", 10)
	text := strings.Join([]string{prologue, chapterTwo, body, late}, "\n\n")

	got, err := s.Split(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Prologue/Introduction", "CHAPTER II", "CHAPTER II", "CHAPTER II"}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Chapter != w {
			t.Errorf("chunk %d chapter = %q, want %q", i, got[i].Chapter, w)
		}
	}
}

func TestSplitter_EmptyText(t *testing.T) {
	s := NewSplitter(topicEmbedder(), DefaultSplitterOptions(), nil)
	got, err := s.Split(context.Background(), " \n\n\t\n ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}
