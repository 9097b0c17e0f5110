package models

import (
	"testing"
)

func TestClaim_Validate(t *testing.T) {
	tests := []struct {
		name    string
		claim   *Claim
		wantErr bool
	}{
		{"empty id", &Claim{ID: "", BookName: "Foo"}, true},
		{"blank id", &Claim{ID: "   ", BookName: "Foo"}, true},
		{"empty book", &Claim{ID: "1", BookName: "  "}, true},
		{"valid claim", &Claim{ID: "1", BookName: "Foo", Content: "He is dead."}, false},
		{"trims id", &Claim{ID: " 7 ", BookName: "Foo"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claim.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.name == "trims id" && tt.claim.ID != "7" {
				t.Errorf("expected trimmed id, got %q", tt.claim.ID)
			}
		})
	}
}

func TestClaim_BookKey(t *testing.T) {
	c := Claim{BookName: "  The Count of Monte Cristo "}
	if got := c.BookKey(); got != "the count of monte cristo" {
		t.Errorf("BookKey() = %q", got)
	}
}
