package application_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushigund/Techligenc-website-backend/internal/application"
	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

type recordingSink struct {
	mu       sync.Mutex
	accepted []application.Application
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Accept(ctx context.Context, app application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.accepted = append(s.accepted, app)
	return nil
}

func validFields() application.Fields {
	return application.Fields{
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "+44 20 7946 0000",
		JobTitle:      "Engineer",
		JobDepartment: "Eng",
		JobLocation:   "Remote",
	}
}

func newIntake(t *testing.T) *upload.Intake {
	t.Helper()
	in, err := upload.NewIntake(filepath.Join(t.TempDir(), "resumes"), upload.DefaultMaxSize, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, in.EnsureDir())
	return in
}

func receivePDF(t *testing.T, in *upload.Intake) *upload.Handle {
	t.Helper()
	body := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 512)...)
	h, err := in.Receive(bytes.NewReader(body), upload.ContentTypePDF, int64(len(body)))
	require.NoError(t, err)
	return h
}

func files(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestSubmitAcceptsAndKeepsResume(t *testing.T) {
	in := newIntake(t)
	sink := &recordingSink{}
	p := application.NewPipeline(sink, zerolog.Nop())
	h := receivePDF(t, in)
	defer h.Close()

	app, err := p.Submit(context.Background(), validFields(), h)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, h.File(), app.Resume)
	assert.False(t, app.SubmittedAt.IsZero())
	assert.True(t, h.Committed())

	require.Len(t, sink.accepted, 1)
	assert.Equal(t, app, sink.accepted[0])

	h.Close()
	assert.Equal(t, 1, files(t, in.Dir()))
}

func TestSubmitMissingFieldRemovesResume(t *testing.T) {
	in := newIntake(t)
	sink := &recordingSink{}
	p := application.NewPipeline(sink, zerolog.Nop())
	h := receivePDF(t, in)

	f := validFields()
	f.Phone = ""
	_, err := p.Submit(context.Background(), f, h)
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(err))
	assert.Equal(t, "phone", apperror.FieldsOf(err)[0].Field)

	assert.Zero(t, files(t, in.Dir()))
	assert.Empty(t, sink.accepted)
}

func TestSubmitInvalidEmailRemovesResume(t *testing.T) {
	in := newIntake(t)
	p := application.NewPipeline(&recordingSink{}, zerolog.Nop())
	h := receivePDF(t, in)

	f := validFields()
	f.Email = "not-an-email"
	_, err := p.Submit(context.Background(), f, h)
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(err))
	assert.Zero(t, files(t, in.Dir()))
}

func TestSubmitWithoutResumeIsMissingAttachment(t *testing.T) {
	sink := &recordingSink{}
	p := application.NewPipeline(sink, zerolog.Nop())

	_, err := p.Submit(context.Background(), validFields(), nil)
	assert.True(t, errors.Is(err, apperror.MissingAttachment))
	assert.Equal(t, "resume", apperror.FieldsOf(err)[0].Field)
	assert.Empty(t, sink.accepted)
}

func TestSubmitSinkFailureRemovesResume(t *testing.T) {
	in := newIntake(t)
	p := application.NewPipeline(&recordingSink{err: errors.New("smtp down")}, zerolog.Nop())
	h := receivePDF(t, in)

	_, err := p.Submit(context.Background(), validFields(), h)
	assert.Equal(t, apperror.KindPersistenceFailed, apperror.KindOf(err))
	assert.False(t, h.Committed())
	assert.Zero(t, files(t, in.Dir()))
}

func TestSubmitSanitizesFields(t *testing.T) {
	in := newIntake(t)
	sink := &recordingSink{}
	p := application.NewPipeline(sink, zerolog.Nop())
	h := receivePDF(t, in)
	defer h.Close()

	f := validFields()
	f.FullName = "<b>Ada</b> Lovelace"
	f.CoverLetter = "<script>alert(1)</script>Hello"
	app, err := p.Submit(context.Background(), f, h)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", app.FullName)
	assert.Equal(t, "Hello", app.CoverLetter)
}
