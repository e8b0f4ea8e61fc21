package contentindex

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/template"
)

// Document is the searchable projection of a listing.
type Document struct {
	ID              string    `json:"id"`
	EntityType      string    `json:"entityType"`
	Title           string    `json:"title"`
	Department      string    `json:"department"`
	Location        string    `json:"location"`
	Type            string    `json:"type"`
	Salary          string    `json:"salary"`
	Description     string    `json:"description"`
	DescriptionText string    `json:"descriptionText"`
	Skills          []string  `json:"skills"`
	Slug            string    `json:"slug"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewDocument(l listing.Listing) (Document, error) {
	text, err := template.MarkdownToText(l.Description)
	if err != nil {
		return Document{}, errors.Wrapf(err, "unable to extract text from listing %s", l.ID)
	}
	skills := l.Skills
	if skills == nil {
		skills = []string{}
	}
	return Document{
		ID:              l.ID,
		EntityType:      listing.EntityType,
		Title:           l.Title,
		Department:      l.Department,
		Location:        l.Location,
		Type:            l.Type,
		Salary:          l.Salary,
		Description:     l.Description,
		DescriptionText: text,
		Skills:          skills,
		Slug:            Slug(l),
		CreatedAt:       l.CreatedAt.UTC(),
		UpdatedAt:       l.UpdatedAt.UTC(),
	}, nil
}

// Slug is the public path segment of a listing, stable across edits of
// anything but the title.
func Slug(l listing.Listing) string {
	s := slug.Make(l.Title)
	if s == "" {
		return l.ID
	}
	return s + "-" + l.ID
}
