package application

import (
	"time"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/sanitize"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

// Fields are the form values of a job application. Job title, department and
// location are free text and not checked against stored listings.
type Fields struct {
	FullName      string `json:"fullName" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"required,max=50"`
	JobTitle      string `json:"jobTitle" validate:"required,max=255"`
	JobDepartment string `json:"jobDepartment" validate:"required,max=255"`
	JobLocation   string `json:"jobLocation" validate:"required,max=255"`
	CoverLetter   string `json:"coverLetter" validate:"max=10000"`
}

// Application is an accepted submission. It always carries its resume.
type Application struct {
	ID            string      `json:"id"`
	FullName      string      `json:"fullName"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	JobTitle      string      `json:"jobTitle"`
	JobDepartment string      `json:"jobDepartment"`
	JobLocation   string      `json:"jobLocation"`
	CoverLetter   string      `json:"coverLetter,omitempty"`
	Resume        upload.File `json:"resume"`
	SubmittedAt   time.Time   `json:"submittedAt"`
}

var validate = apperror.NewValidator()

func Validate(f Fields) error {
	return validate.Struct(f, "invalid application")
}

func (f Fields) Sanitized() Fields {
	return Fields{
		FullName:      sanitize.Text(f.FullName),
		Email:         sanitize.Text(f.Email),
		Phone:         sanitize.Text(f.Phone),
		JobTitle:      sanitize.Text(f.JobTitle),
		JobDepartment: sanitize.Text(f.JobDepartment),
		JobLocation:   sanitize.Text(f.JobLocation),
		CoverLetter:   sanitize.Text(f.CoverLetter),
	}
}
