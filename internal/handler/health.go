package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func HealthHandler(svr server.Server, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			svr.Log(err, "health check failed")
			svr.JSON(w, http.StatusServiceUnavailable, server.Response{
				Message: "database unreachable",
				Errors:  []apperror.FieldError{{Field: "database", Message: "unreachable"}},
			})
			return
		}
		svr.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	}
}
