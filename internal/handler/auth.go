package handler

import (
	"net/http"

	"github.com/rushigund/Techligenc-website-backend/internal/authoriser"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
)

func LoginHandler(svr server.Server, auth authoriser.Authoriser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq authoriser.AuthRq
		if err := decodeJSON(w, r, &rq); err != nil {
			svr.Failure(w, err)
			return
		}
		id, err := auth.Login(rq)
		if err != nil {
			svr.Failure(w, err)
			return
		}
		token, err := auth.IssueToken(id)
		if err != nil {
			svr.Failure(w, err)
			return
		}
		if err := auth.SaveSession(w, r, token); err != nil {
			svr.Log(err, "unable to save session, continuing with bearer token only")
		}
		svr.Success(w, http.StatusOK, "Logged in", map[string]interface{}{
			"token":    token,
			"identity": id,
		})
	}
}
