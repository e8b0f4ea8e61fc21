package listing

import (
	"strings"
	"time"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/sanitize"
)

const EntityType = "job_listing"

// Operation is the kind of change propagated to the content index.
type Operation string

const (
	OperationUpsert Operation = "upsert"
	OperationDelete Operation = "delete"
)

type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Salary      string    `json:"salary"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Fields are the caller supplied values of a listing.
type Fields struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Department  string   `json:"department" validate:"required,max=255"`
	Location    string   `json:"location" validate:"required,max=255"`
	Type        string   `json:"type" validate:"required,max=100"`
	Salary      string   `json:"salary" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Skills      []string `json:"skills" validate:"required,min=1,dive,required,max=100"`
}

// Patch is a partial update; nil members are left untouched.
type Patch struct {
	Title       *string   `json:"title"`
	Department  *string   `json:"department"`
	Location    *string   `json:"location"`
	Type        *string   `json:"type"`
	Salary      *string   `json:"salary"`
	Description *string   `json:"description"`
	Skills      *[]string `json:"skills"`
}

var validate = apperror.NewValidator()

// Validate checks f against the rules enforced on every write.
func Validate(f Fields) error {
	return validate.Struct(f, "invalid job listing")
}

func (l Listing) Fields() Fields {
	return Fields{
		Title:       l.Title,
		Department:  l.Department,
		Location:    l.Location,
		Type:        l.Type,
		Salary:      l.Salary,
		Description: l.Description,
		Skills:      append([]string(nil), l.Skills...),
	}
}

// Sanitized strips markup from the single line fields. Description is
// markdown and only trimmed.
func (f Fields) Sanitized() Fields {
	return Fields{
		Title:       sanitize.Text(f.Title),
		Department:  sanitize.Text(f.Department),
		Location:    sanitize.Text(f.Location),
		Type:        sanitize.Text(f.Type),
		Salary:      sanitize.Text(f.Salary),
		Description: strings.TrimSpace(f.Description),
		Skills:      sanitize.Strings(f.Skills),
	}
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Department == nil && p.Location == nil && p.Type == nil &&
		p.Salary == nil && p.Description == nil && p.Skills == nil
}

// Apply returns f with every supplied member of p written over it.
func (p Patch) Apply(f Fields) Fields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Department != nil {
		f.Department = *p.Department
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Salary != nil {
		f.Salary = *p.Salary
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Skills != nil {
		f.Skills = append([]string(nil), (*p.Skills)...)
	}
	return f
}

func (p Patch) Sanitized() Patch {
	out := Patch{
		Title:       sanitizePtr(p.Title),
		Department:  sanitizePtr(p.Department),
		Location:    sanitizePtr(p.Location),
		Type:        sanitizePtr(p.Type),
		Salary:      sanitizePtr(p.Salary),
		Description: p.Description,
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		out.Description = &d
	}
	if p.Skills != nil {
		s := sanitize.Strings(*p.Skills)
		if s == nil {
			s = []string{}
		}
		out.Skills = &s
	}
	return out
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize.Text(*s)
	return &v
}
