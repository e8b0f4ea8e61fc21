package application

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/email"
	"github.com/rushigund/Techligenc-website-backend/internal/queue"
	"github.com/rushigund/Techligenc-website-backend/internal/template"
)

// Sinks delivers to every member in order and fails on the first error.
type Sinks []Sink

func (s Sinks) Name() string {
	names := make([]string, 0, len(s))
	for _, sink := range s {
		names = append(names, sink.Name())
	}
	return strings.Join(names, ",")
}

func (s Sinks) Accept(ctx context.Context, app Application) error {
	for _, sink := range s {
		if err := sink.Accept(ctx, app); err != nil {
			return errors.Wrapf(err, "%s sink", sink.Name())
		}
	}
	return nil
}

// LogSink records accepted applications as structured log lines.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) LogSink {
	return LogSink{log: logger}
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Accept(ctx context.Context, app Application) error {
	s.log.Info().
		Str("application_id", app.ID).
		Str("full_name", app.FullName).
		Str("email", app.Email).
		Str("job_title", app.JobTitle).
		Str("job_department", app.JobDepartment).
		Str("job_location", app.JobLocation).
		Str("resume", app.Resume.StorageName).
		Int64("resume_size", app.Resume.Size).
		Time("submitted_at", app.SubmittedAt).
		Msg("job application")
	return nil
}

// Mailer is satisfied by email.Client.
type Mailer interface {
	SendEmailWithAttachment(ctx context.Context, from, to, replyTo email.Address, subject, html string, attachment []byte, fileName string) error
	NoReplySenderAddress() string
	DefaultSenderName() string
}

// EmailSink mails each application to the hiring inbox with the resume attached.
type EmailSink struct {
	mailer   Mailer
	tmpl     *template.Template
	hrEmail  string
	siteName string
}

func NewEmailSink(mailer Mailer, tmpl *template.Template, hrEmail string) EmailSink {
	return EmailSink{mailer: mailer, tmpl: tmpl, hrEmail: hrEmail, siteName: mailer.DefaultSenderName()}
}

func (EmailSink) Name() string { return "email" }

func (s EmailSink) Accept(ctx context.Context, app Application) error {
	resume, err := os.ReadFile(app.Resume.Path)
	if err != nil {
		return errors.Wrap(err, "unable to read resume")
	}
	body := &bytes.Buffer{}
	err = s.tmpl.Execute(body, "application-email.html", map[string]interface{}{
		"SiteName":    s.siteName,
		"Application": app,
	})
	if err != nil {
		return errors.Wrap(err, "unable to render application email")
	}
	return s.mailer.SendEmailWithAttachment(
		ctx,
		email.Address{Name: s.siteName, Email: s.mailer.NoReplySenderAddress()},
		email.Address{Email: s.hrEmail},
		email.Address{Name: app.FullName, Email: app.Email},
		"Application for "+app.JobTitle+" from "+app.FullName,
		body.String(),
		resume,
		attachmentName(app),
	)
}

func attachmentName(app Application) string {
	name := strings.Join(strings.Fields(app.FullName), "-")
	if name == "" {
		return app.Resume.StorageName
	}
	return "resume-" + name + app.Resume.Extension
}

// QueueSink publishes each application as JSON for downstream processing.
type QueueSink struct {
	publisher queue.Publisher
	name      string
}

func NewQueueSink(publisher queue.Publisher, name string) QueueSink {
	return QueueSink{publisher: publisher, name: name}
}

func (QueueSink) Name() string { return "amqp" }

func (s QueueSink) Accept(ctx context.Context, app Application) error {
	return s.publisher.Publish(ctx, s.name, app)
}
