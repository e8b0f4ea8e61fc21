package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
)

const maxJSONBodyBytes = int64(1 << 20)

func ListJobsHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := svc.List(r.Context())
		if err != nil {
			svr.Failure(w, err)
			return
		}
		svr.Success(w, http.StatusOK, "Job listings retrieved", listings)
	}
}

func GetJobHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			svr.Failure(w, err)
			return
		}
		svr.Success(w, http.StatusOK, "Job listing retrieved", l)
	}
}

func CreateJobHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f listing.Fields
		if err := decodeJSON(w, r, &f); err != nil {
			svr.Failure(w, err)
			return
		}
		res := svc.Create(r.Context(), f)
		writeResult(svr, w, res, http.StatusCreated, "Job listing created", res.Listing)
	}
}

func UpdateJobHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p listing.Patch
		if err := decodeJSON(w, r, &p); err != nil {
			svr.Failure(w, err)
			return
		}
		res := svc.Update(r.Context(), mux.Vars(r)["id"], p)
		writeResult(svr, w, res, http.StatusOK, "Job listing updated", res.Listing)
	}
}

func DeleteJobHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.Delete(r.Context(), mux.Vars(r)["id"])
		writeResult(svr, w, res, http.StatusOK, "Job listing deleted", map[string]string{"id": res.Listing.ID})
	}
}

// writeResult replies for a listing mutation. A failed index sync after a
// successful write is still a success, with the sync problem listed under
// the "index" field.
func writeResult(svr server.Server, w http.ResponseWriter, res listing.Result, status int, message string, data interface{}) {
	switch res.Outcome {
	case listing.Persisted:
		svr.Success(w, status, message, data)
	case listing.PersistedSyncFailed:
		svr.SuccessWithWarnings(w, status, message, data, []apperror.FieldError{{
			Field:   "index",
			Message: "search index update failed and will be retried by the next reindex",
		}})
	default:
		svr.Failure(w, res.Err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return apperror.Wrap(err, apperror.KindValidationFailed, "request body too large")
	case errors.Is(err, io.EOF):
		return apperror.Validation("request body is empty")
	default:
		return apperror.Wrap(err, apperror.KindValidationFailed, "request body is not valid JSON")
	}
}
