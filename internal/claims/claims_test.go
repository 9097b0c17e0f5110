package claims

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "test.csv", "\uFEFFID,Book_Name,char,Content\n"+
		"1,Foo,Tom,He is dead.\n"+
		"\n"+
		"2, foo ,Huck,\"He said, \"\"no\"\".\"\n")

	claims, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].ID != "1" || claims[0].BookName != "Foo" || claims[0].Content != "He is dead." {
		t.Errorf("claim 0 = %+v", claims[0])
	}
	if claims[1].Content != `He said, "no".` {
		t.Errorf("claim 1 content = %q", claims[1].Content)
	}
	if claims[1].BookKey() != "foo" {
		t.Errorf("claim 1 book key = %q", claims[1].BookKey())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	path := writeFile(t, "test.csv", "id,content\n1,x\n")
	if _, err := Load(path); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Expected ErrNoHeader, got %v", err)
	}
	empty := writeFile(t, "empty.csv", "")
	if _, err := Load(empty); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Expected ErrNoHeader for empty file, got %v", err)
	}
}

func TestLoad_EmptyID(t *testing.T) {
	path := writeFile(t, "test.csv", "id,book_name,content\n ,Foo,x\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "test.json", "[]")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_ = f.SetCellValue("Sheet1", "A1", "content")
	_ = f.SetCellValue("Sheet1", "B1", "book_name")
	_ = f.SetCellValue("Sheet1", "C1", "id")
	_ = f.SetCellValue("Sheet1", "A2", "He is dead.")
	_ = f.SetCellValue("Sheet1", "B2", "Foo")
	_ = f.SetCellValue("Sheet1", "C2", 7)
	path := filepath.Join(t.TempDir(), "claims.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	claims, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(claims) != 1 || claims[0].ID != "7" || claims[0].BookName != "Foo" || claims[0].Content != "He is dead." {
		t.Errorf("claims = %+v", claims)
	}
}

func TestGroupByBook(t *testing.T) {
	path := writeFile(t, "test.csv", "id,book_name,content\n"+
		"1,Foo,a\n2,Bar,b\n3,FOO,c\n4,bar,d\n")
	claims, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	groups := GroupByBook(claims)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "foo" || groups[0].Name != "Foo" || groups[1].Key != "bar" {
		t.Errorf("groups = %+v", groups)
	}
	if len(groups[0].Claims) != 2 || groups[0].Claims[0].ID != "1" || groups[0].Claims[1].ID != "3" {
		t.Errorf("foo claims = %+v", groups[0].Claims)
	}
}
