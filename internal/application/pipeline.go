package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

// Sink receives accepted applications.
type Sink interface {
	Name() string
	Accept(ctx context.Context, app Application) error
}

type Pipeline struct {
	sink Sink
	log  zerolog.Logger
	now  func() time.Time
}

func NewPipeline(sink Sink, logger zerolog.Logger) *Pipeline {
	return &Pipeline{sink: sink, log: logger, now: time.Now}
}

// Submit validates f, binds it to the uploaded resume and delivers it to the
// sink. The resume is kept only when Submit succeeds; on every error the
// handle is closed, which removes the file.
func (p *Pipeline) Submit(ctx context.Context, f Fields, h *upload.Handle) (Application, error) {
	f = f.Sanitized()
	if err := Validate(f); err != nil {
		h.Close()
		return Application{}, err
	}
	if h == nil {
		return Application{}, &apperror.Error{
			Kind:    apperror.KindMissingAttachment,
			Message: "a resume is required",
			Fields:  []apperror.FieldError{{Field: "resume", Message: "is required"}},
		}
	}

	app := Application{
		ID:            ksuid.New().String(),
		FullName:      f.FullName,
		Email:         f.Email,
		Phone:         f.Phone,
		JobTitle:      f.JobTitle,
		JobDepartment: f.JobDepartment,
		JobLocation:   f.JobLocation,
		CoverLetter:   f.CoverLetter,
		Resume:        h.File(),
		SubmittedAt:   p.now().UTC(),
	}
	if err := p.sink.Accept(ctx, app); err != nil {
		h.Close()
		p.log.Error().Err(err).Str("application_id", app.ID).Str("sink", p.sink.Name()).Msg("application delivery failed")
		return Application{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to accept application")
	}
	h.Commit()
	p.log.Info().
		Str("application_id", app.ID).
		Str("job_title", app.JobTitle).
		Str("resume", app.Resume.StorageName).
		Msg("application accepted")
	return app, nil
}
