package docstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setup(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestStore_ResolveCaseInsensitive(t *testing.T) {
	dir := setup(t, map[string]string{
		"The Count of Monte Cristo.TXT": "text",
		"Other.txt":                     "other",
	})
	s := NewStore(dir, nil)

	path, err := s.Resolve("the count of monte cristo")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if filepath.Base(path) != "The Count of Monte Cristo.TXT" {
		t.Errorf("got %s", path)
	}
}

func TestStore_ResolvePrefersExtensionOrder(t *testing.T) {
	dir := setup(t, map[string]string{
		"foo.md":  "markdown",
		"Foo.txt": "plain",
	})

	path, err := NewStore(dir, nil).Resolve("foo")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Foo.txt" {
		t.Errorf("default order should prefer .txt, got %s", path)
	}

	path, err = NewStore(dir, []string{"md", ".TXT"}).Resolve("foo")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "foo.md" {
		t.Errorf("configured order should prefer .md, got %s", path)
	}
}

func TestStore_ResolveNotFound(t *testing.T) {
	dir := setup(t, map[string]string{"Foo.csv": "not a book", "Foobar.txt": "x"})
	s := NewStore(dir, nil)
	if _, err := s.Resolve("foo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.Resolve("unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_ResolveMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"), nil)
	if _, err := s.Resolve("foo"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected directory error, got %v", err)
	}
}

func TestStore_Load(t *testing.T) {
	dir := setup(t, map[string]string{"Foo.txt": "He is running a marathon."})
	s := NewStore(dir, nil)
	path, err := s.Resolve("FOO")
	if err != nil {
		t.Fatal(err)
	}
	text, err := s.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "He is running a marathon." {
		t.Errorf("got %q", text)
	}
}

func TestStore_Supported(t *testing.T) {
	s := NewStore(t.TempDir(), []string{".txt"})
	if !s.Supported("a/B.TXT") {
		t.Error(".TXT should be supported")
	}
	if s.Supported("b.pdf") {
		t.Error(".pdf should not be supported")
	}
}
