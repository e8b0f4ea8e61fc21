package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/config"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) server.Response {
	t.Helper()
	var res server.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestFailureMapsKinds(t *testing.T) {
	svr := server.NewServer(config.Config{Env: "prod"}, mux.NewRouter(), zerolog.Nop())

	cases := []struct {
		err    error
		status int
	}{
		{apperror.Validation("bad", apperror.FieldError{Field: "email", Message: "invalid"}), http.StatusBadRequest},
		{apperror.New(apperror.KindMissingAttachment, "no resume"), http.StatusBadRequest},
		{apperror.New(apperror.KindFileTooLarge, "too big"), http.StatusRequestEntityTooLarge},
		{apperror.New(apperror.KindInvalidFileType, "pdf only"), http.StatusUnsupportedMediaType},
		{apperror.New(apperror.KindNotFound, "gone"), http.StatusNotFound},
		{apperror.New(apperror.KindUnauthorized, "who"), http.StatusUnauthorized},
		{apperror.New(apperror.KindForbidden, "no"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		svr.Failure(rec, c.err)
		assert.Equal(t, c.status, rec.Code, c.err.Error())
		res := decode(t, rec)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Message)
	}
}

func TestFailureHidesCauseOutsideDev(t *testing.T) {
	cause := errors.New("pq: password authentication failed")
	err := apperror.Wrap(cause, apperror.KindPersistenceFailed, "unable to save job listing")

	rec := httptest.NewRecorder()
	server.NewServer(config.Config{Env: "prod"}, mux.NewRouter(), zerolog.Nop()).Failure(rec, err)
	res := decode(t, rec)
	assert.Equal(t, "unable to save job listing", res.Error)

	rec = httptest.NewRecorder()
	server.NewServer(config.Config{Env: "dev"}, mux.NewRouter(), zerolog.Nop()).Failure(rec, err)
	res = decode(t, rec)
	assert.Contains(t, res.Error, "password authentication failed")
}

func TestClientErrorsCarryFieldsWithoutErrorDetail(t *testing.T) {
	svr := server.NewServer(config.Config{Env: "dev"}, mux.NewRouter(), zerolog.Nop())
	rec := httptest.NewRecorder()
	svr.Failure(rec, apperror.Validation("invalid application", apperror.FieldError{Field: "email", Message: "must be a valid email"}))

	res := decode(t, rec)
	assert.Empty(t, res.Error)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "email", res.Errors[0].Field)
}

func TestSuccessWithWarnings(t *testing.T) {
	svr := server.NewServer(config.Config{}, mux.NewRouter(), zerolog.Nop())
	rec := httptest.NewRecorder()
	svr.SuccessWithWarnings(rec, http.StatusCreated, "created", map[string]string{"id": "1"},
		[]apperror.FieldError{{Field: "index", Message: "sync failed"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	res := decode(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "index", res.Errors[0].Field)
}
