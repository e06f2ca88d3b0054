package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"libralink/internal/book"
	"libralink/internal/httpx"
)

type bookFixture struct {
	ISBN            string `yaml:"isbn"`
	Title           string `yaml:"title"`
	Subtitle        string `yaml:"subtitle"`
	Author          string `yaml:"author"`
	Genre           string `yaml:"genre"`
	Publisher       string `yaml:"publisher"`
	Description     string `yaml:"description"`
	PublicationYear int    `yaml:"publication_year"`
	PageCount       int    `yaml:"page_count"`
	Language        string `yaml:"language"`
	CoverURL        string `yaml:"cover_url"`
	Copies          int    `yaml:"copies"`
}

type fixtureFile struct {
	Books []bookFixture `yaml:"books"`
}

func loadFixture(path string) ([]bookFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if len(f.Books) == 0 {
		return nil, errors.New("fixture has no books")
	}
	for i, b := range f.Books {
		if !httpx.IsValidISBN(b.ISBN) {
			return nil, fmt.Errorf("books[%d]: invalid isbn %q", i, b.ISBN)
		}
		if b.Title == "" || b.Author == "" {
			return nil, fmt.Errorf("books[%d] (%s): title and author are required", i, b.ISBN)
		}
	}
	return f.Books, nil
}

func (f bookFixture) toBook() *book.Book {
	b := &book.Book{
		ISBN:        f.ISBN,
		Title:       f.Title,
		Subtitle:    f.Subtitle,
		Author:      f.Author,
		Genre:       f.Genre,
		Publisher:   f.Publisher,
		Description: f.Description,
		Language:    f.Language,
		TotalCopies: f.Copies,
	}
	if f.PublicationYear > 0 {
		year := f.PublicationYear
		b.PublicationYear = &year
	}
	if f.PageCount > 0 {
		pages := f.PageCount
		b.PageCount = &pages
	}
	if f.CoverURL != "" {
		cover := f.CoverURL
		b.CoverURL = &cover
	}
	return b
}
