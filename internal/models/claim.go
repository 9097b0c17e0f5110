package models

import (
	"fmt"
	"strings"
)

// Claim is a statement about a book that must be checked against the book's text.
type Claim struct {
	ID       string `json:"id"`
	BookName string `json:"book_name"`
	Content  string `json:"content"`
}

// BookKey returns the lower-cased, trimmed book name used to group claims and resolve documents.
func (c Claim) BookKey() string {
	return strings.ToLower(strings.TrimSpace(c.BookName))
}

// Validate ensures the claim carries an id and a book reference.
func (c *Claim) Validate() error {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return fmt.Errorf("claim id cannot be empty")
	}
	if c.BookKey() == "" {
		return fmt.Errorf("claim %s: book name cannot be empty", c.ID)
	}
	return nil
}
