package notion

import (
	"context"
	"net/http"

	gnt "github.com/dstotijn/go-notion"

	"github.com/rushigund/Techligenc-website-backend/internal/application"
)

// maxRichText is the Notion limit for a single rich text content string.
const maxRichText = 2000

// Sink records each accepted application as a page in a Notion database.
type Sink struct {
	api        *gnt.Client
	databaseID string
}

func NewSink(token, databaseID string, httpClient *http.Client) *Sink {
	opts := []gnt.ClientOption{}
	if httpClient != nil {
		opts = append(opts, gnt.WithHTTPClient(httpClient))
	}
	return &Sink{
		api:        gnt.NewClient(token, opts...),
		databaseID: databaseID,
	}
}

func (*Sink) Name() string { return "notion" }

func (s *Sink) Accept(ctx context.Context, app application.Application) error {
	props := pageProperties(app)
	_, err := s.api.CreatePage(ctx, gnt.CreatePageParams{
		ParentType:             gnt.ParentTypeDatabase,
		ParentID:               s.databaseID,
		DatabasePageProperties: &props,
	})
	return err
}

func richText(s string) []gnt.RichText {
	if s == "" {
		return nil
	}
	if r := []rune(s); len(r) > maxRichText {
		s = string(r[:maxRichText])
	}
	return []gnt.RichText{
		{
			Text: &gnt.Text{
				Content: s,
			},
		},
	}
}

func pageProperties(app application.Application) gnt.DatabasePageProperties {
	email := app.Email
	phone := app.Phone
	props := gnt.DatabasePageProperties{
		"Name": gnt.DatabasePageProperty{
			Title: richText(app.FullName),
		},
		"Email": gnt.DatabasePageProperty{
			Email: &email,
		},
		"Phone": gnt.DatabasePageProperty{
			PhoneNumber: &phone,
		},
		"Position": gnt.DatabasePageProperty{
			RichText: richText(app.JobTitle),
		},
		"Department": gnt.DatabasePageProperty{
			Select: &gnt.SelectOptions{
				Name: app.JobDepartment,
			},
		},
		"Location": gnt.DatabasePageProperty{
			RichText: richText(app.JobLocation),
		},
		"Resume": gnt.DatabasePageProperty{
			RichText: richText(app.Resume.StorageName),
		},
		"Reference": gnt.DatabasePageProperty{
			RichText: richText(app.ID),
		},
		"Stage": gnt.DatabasePageProperty{
			Select: &gnt.SelectOptions{
				Name: "Applied",
			},
		},
		"Submitted": gnt.DatabasePageProperty{
			Date: &gnt.Date{
				Start: gnt.NewDateTime(app.SubmittedAt, true),
			},
		},
	}
	if app.CoverLetter != "" {
		props["Cover Letter"] = gnt.DatabasePageProperty{
			RichText: richText(app.CoverLetter),
		}
	}
	return props
}
