// Package postview derives display models for post cards and the profile tabs.
package postview

import (
	"html"
	"strings"
	"unicode/utf8"

	"feedview/internal/model"

	"github.com/microcosm-cc/bluemonday"
)

// ExcerptLimit is how many characters of a description a card shows.
const ExcerptLimit = 100

// MaxGalleryImages is how many images a card shows before "+N more".
const MaxGalleryImages = 3

var stripPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from a post description.
func PlainText(descriptionHTML string) string {
	s := stripPolicy.Sanitize(descriptionHTML)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt returns the first ExcerptLimit characters of the description's text,
// with "..." appended when it was cut.
func Excerpt(descriptionHTML string) string {
	s := PlainText(descriptionHTML)
	if utf8.RuneCountInString(s) <= ExcerptLimit {
		return s
	}
	r := []rune(s)
	return string(r[:ExcerptLimit]) + "..."
}

type Gallery struct {
	Visible   []string `json:"visible"`
	Columns   int      `json:"columns"`
	MoreCount int      `json:"moreCount,omitempty"`
}

// NewGallery lays out a post's images; nil when there are none.
func NewGallery(images []string) *Gallery {
	if len(images) == 0 {
		return nil
	}
	n := len(images)
	g := &Gallery{Columns: min(n, MaxGalleryImages)}
	g.Visible = append([]string(nil), images[:g.Columns]...)
	if n > MaxGalleryImages {
		g.MoreCount = n - MaxGalleryImages
	}
	return g
}

type Card struct {
	PostID    string   `json:"postId"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Author    string   `json:"author,omitempty"`
	Premium   bool     `json:"premium"`
	Gallery   *Gallery `json:"gallery,omitempty"`
	Upvotes   int      `json:"upvotes"`
	Downvotes int      `json:"downvotes"`
}

func NewCard(p model.Post) Card {
	author := ""
	if p.User != nil {
		author = p.User.Name
	}
	return Card{
		PostID:    p.ID,
		Title:     p.Title,
		Excerpt:   Excerpt(p.Description),
		Author:    author,
		Premium:   p.IsPremium,
		Gallery:   NewGallery(p.Images),
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
	}
}
