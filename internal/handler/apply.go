package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/rushigund/Techligenc-website-backend/internal/application"
	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

const (
	resumeField = "resume"
	// room for the text fields and multipart framing around the resume
	formOverheadBytes = int64(1 << 20)
	maxFieldBytes     = int64(64 << 10)
)

// ApplyForJobHandler streams the multipart body part by part. The resume
// goes straight into the intake directory, nothing is spooled elsewhere.
func ApplyForJobHandler(svr server.Server, intake *upload.Intake, pipeline *application.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, intake.MaxSize()+formOverheadBytes)
		mr, err := r.MultipartReader()
		if err != nil {
			svr.Failure(w, formError(err))
			return
		}

		values := map[string]string{}
		var h *upload.Handle
		defer func() { h.Close() }()
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				svr.Failure(w, formError(err))
				return
			}
			name := part.FormName()
			switch {
			case name == resumeField:
				if h != nil {
					part.Close()
					svr.Failure(w, apperror.Validation("only one resume may be uploaded", apperror.FieldError{
						Field:   resumeField,
						Message: "must be a single file",
					}))
					return
				}
				h, err = intake.Receive(part, part.Header.Get("Content-Type"), upload.UnknownSize)
				part.Close()
				if err != nil {
					svr.Failure(w, err)
					return
				}
			case name != "" && part.FileName() == "":
				value, err := readField(name, part)
				part.Close()
				if err != nil {
					svr.Failure(w, err)
					return
				}
				if _, seen := values[name]; !seen {
					values[name] = value
				}
			default:
				part.Close()
			}
		}

		fields := application.Fields{
			FullName:      values["fullName"],
			Email:         values["email"],
			Phone:         values["phone"],
			JobTitle:      values["jobTitle"],
			JobDepartment: values["jobDepartment"],
			JobLocation:   values["jobLocation"],
			CoverLetter:   values["coverLetter"],
		}
		app, err := pipeline.Submit(r.Context(), fields, h)
		if err != nil {
			svr.Failure(w, err)
			return
		}
		svr.Success(w, http.StatusCreated, "Application submitted", map[string]interface{}{
			"id":          app.ID,
			"submittedAt": app.SubmittedAt,
		})
	}
}

func readField(name string, part io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", formError(err)
	}
	if int64(len(b)) > maxFieldBytes {
		return "", apperror.Validation("form field is too long", apperror.FieldError{
			Field:   name,
			Message: "must be at most 64KiB",
		})
	}
	return string(b), nil
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Wrap(err, apperror.KindFileTooLarge, "request exceeds the upload limit")
	}
	return apperror.Wrap(err, apperror.KindValidationFailed, "request must be multipart/form-data")
}
