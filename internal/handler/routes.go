package handler

import (
	"net/http"

	"github.com/rushigund/Techligenc-website-backend/internal/application"
	"github.com/rushigund/Techligenc-website-backend/internal/authoriser"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/middleware"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

type Deps struct {
	Listings *listing.Service
	Intake   *upload.Intake
	Pipeline *application.Pipeline
	Auth     authoriser.Authoriser
	DB       Pinger
}

// RegisterRoutes wires every endpoint on svr. Listing writes require the
// listings:write capability.
func RegisterRoutes(svr server.Server, d Deps) {
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireCapability(d.Auth, authoriser.CapabilityListingsWrite, svr.Failure, h)
	}

	svr.RegisterRoute("/health", HealthHandler(svr, d.DB), []string{http.MethodGet})
	svr.RegisterRoute("/career/auth", LoginHandler(svr, d.Auth), []string{http.MethodPost})

	svr.RegisterRoute("/career/jobs.rss", JobsRSSHandler(svr, d.Listings), []string{http.MethodGet})
	svr.RegisterRoute("/career/sitemap.xml", SitemapHandler(svr, d.Listings), []string{http.MethodGet})
	svr.RegisterRoute("/career/jobs", ListJobsHandler(svr, d.Listings), []string{http.MethodGet})
	svr.RegisterRoute("/career/jobs", write(CreateJobHandler(svr, d.Listings)), []string{http.MethodPost})
	svr.RegisterRoute("/career/jobs/{id}", GetJobHandler(svr, d.Listings), []string{http.MethodGet})
	svr.RegisterRoute("/career/jobs/{id}", write(UpdateJobHandler(svr, d.Listings)), []string{http.MethodPut})
	svr.RegisterRoute("/career/jobs/{id}", write(DeleteJobHandler(svr, d.Listings)), []string{http.MethodDelete})

	svr.RegisterRoute("/career/apply", ApplyForJobHandler(svr, d.Intake, d.Pipeline), []string{http.MethodPost})
}
