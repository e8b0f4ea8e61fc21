package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/snabb/sitemap"

	"github.com/rushigund/Techligenc-website-backend/internal/contentindex"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
	"github.com/rushigund/Techligenc-website-backend/internal/template"
)

func jobURL(svr server.Server, l listing.Listing) string {
	return fmt.Sprintf("%s/careers/%s", svr.GetConfig().SiteURL(), contentindex.Slug(l))
}

func JobsRSSHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := svc.List(r.Context())
		if err != nil {
			svr.Failure(w, err)
			return
		}
		cfg := svr.GetConfig()
		now := time.Now()
		feed := &feeds.Feed{
			Title:       fmt.Sprintf("%s Careers", cfg.SiteName),
			Link:        &feeds.Link{Href: cfg.SiteURL() + "/careers"},
			Description: fmt.Sprintf("Open positions at %s", cfg.SiteName),
			Author:      &feeds.Author{Name: cfg.SiteName, Email: cfg.HREmail},
			Created:     now,
		}
		for _, l := range listings {
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          l.ID,
				Title:       fmt.Sprintf("%s (%s, %s)", l.Title, l.Department, l.Location),
				Link:        &feeds.Link{Href: jobURL(svr, l)},
				Description: string(template.MarkdownToHTML(l.Description)),
				Author:      &feeds.Author{Name: cfg.SiteName, Email: cfg.HREmail},
				Created:     l.CreatedAt,
				Updated:     l.UpdatedAt,
			})
		}
		rss, err := feed.ToRss()
		if err != nil {
			svr.Failure(w, err)
			return
		}
		svr.XML(w, http.StatusOK, []byte(rss))
	}
}

func SitemapHandler(svr server.Server, svc *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := svc.List(r.Context())
		if err != nil {
			svr.Failure(w, err)
			return
		}
		now := time.Now()
		sm := sitemap.New()
		sm.Add(&sitemap.URL{
			Loc:        svr.GetConfig().SiteURL() + "/careers",
			LastMod:    &now,
			ChangeFreq: sitemap.Daily,
		})
		for _, l := range listings {
			lastMod := l.UpdatedAt
			sm.Add(&sitemap.URL{
				Loc:        jobURL(svr, l),
				LastMod:    &lastMod,
				ChangeFreq: sitemap.Weekly,
			})
		}
		var buf bytes.Buffer
		if _, err := sm.WriteTo(&buf); err != nil {
			svr.Failure(w, err)
			return
		}
		svr.XML(w, http.StatusOK, buf.Bytes())
	}
}
