package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
)

const (
	sniffLen       = 3072
	partialPattern = ".intake-*.part"
)

// Intake writes accepted uploads into a single directory.
type Intake struct {
	dir     string
	maxSize int64
	log     zerolog.Logger
}

func NewIntake(dir string, maxSize int64, logger zerolog.Logger) (*Intake, error) {
	if dir == "" {
		return nil, errors.New("upload dir cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Intake{
		dir:     abs,
		maxSize: maxSize,
		log:     logger.With().Str("component", "upload").Logger(),
	}, nil
}

func (i *Intake) Dir() string {
	return i.dir
}

func (i *Intake) MaxSize() int64 {
	return i.maxSize
}

// EnsureDir creates the intake directory if needed and removes partial
// files left behind by an interrupted process. Call once at startup.
func (i *Intake) EnsureDir() error {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to create upload directory")
	}
	partials, err := filepath.Glob(filepath.Join(i.dir, partialPattern))
	if err != nil {
		return err
	}
	for _, p := range partials {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			i.log.Warn().Err(err).Str("path", p).Msg("unable to remove partial upload")
		}
	}
	return nil
}

// Receive validates and stores one uploaded file. declaredSize may be
// UnknownSize; the size ceiling is enforced on the stream either way.
// On error nothing is left in the intake directory.
func (i *Intake) Receive(r io.Reader, declaredContentType string, declaredSize int64) (*Handle, error) {
	contentType, rule, err := lookupContentType(declaredContentType)
	if err != nil {
		return nil, err
	}
	if declaredSize > i.maxSize {
		return nil, i.tooLarge(declaredSize)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, i.readFailure(err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.Validation("resume is empty", apperror.FieldError{Field: "resume", Message: "is empty"})
	}
	if !sniffMatches(mimetype.Detect(head), contentType, rule.container) {
		return nil, invalidType(fmt.Sprintf("resume content does not look like %s", contentType))
	}

	tmp, err := os.CreateTemp(i.dir, partialPattern)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to store resume")
	}
	written, copyErr := io.Copy(tmp, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), i.maxSize+1))
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		i.discard(tmp.Name())
		return nil, i.readFailure(copyErr)
	case closeErr != nil:
		i.discard(tmp.Name())
		return nil, apperror.Wrap(closeErr, apperror.KindPersistenceFailed, "unable to store resume")
	case written > i.maxSize:
		i.discard(tmp.Name())
		return nil, i.tooLarge(written)
	}

	name := uuid.NewString() + rule.ext
	path := filepath.Join(i.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		i.discard(tmp.Name())
		return nil, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to store resume")
	}

	f := &File{
		StorageName: name,
		Extension:   rule.ext,
		Path:        path,
		ContentType: contentType,
		Size:        written,
	}
	i.log.Debug().
		Str("file", name).
		Str("content_type", contentType).
		Str("size", humanize.IBytes(uint64(written))).
		Msg("upload accepted")
	return &Handle{file: f, intake: i}, nil
}

// Remove deletes an accepted file. Failures are logged, never returned.
func (i *Intake) Remove(f File) {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		i.log.Error().Err(err).Str("file", f.StorageName).Msg("unable to remove upload")
		return
	}
	i.log.Debug().Str("file", f.StorageName).Msg("upload removed")
}

func (i *Intake) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		i.log.Error().Err(err).Str("path", path).Msg("unable to remove partial upload")
	}
}

func (i *Intake) tooLarge(size int64) error {
	if size < 0 {
		return apperror.New(apperror.KindFileTooLarge, fmt.Sprintf("resume exceeds the %s limit", humanize.IBytes(uint64(i.maxSize))))
	}
	return apperror.New(
		apperror.KindFileTooLarge,
		fmt.Sprintf("resume is %s, the limit is %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(i.maxSize))),
	)
}

func (i *Intake) readFailure(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		i.log.Debug().Int64("body_limit", maxErr.Limit).Msg("request body limit reached during upload")
		return i.tooLarge(UnknownSize)
	}
	return apperror.Wrap(err, apperror.KindValidationFailed, "unable to read resume")
}

func lookupContentType(declared string) (string, contentRule, error) {
	if strings.TrimSpace(declared) == "" {
		return "", contentRule{}, invalidType("resume content type is missing")
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", contentRule{}, invalidType("resume content type is malformed")
	}
	mediaType = strings.ToLower(mediaType)
	r, ok := allowed[mediaType]
	if !ok {
		return "", contentRule{}, invalidType("resume must be a PDF, DOC or DOCX file")
	}
	return mediaType, r, nil
}

func sniffMatches(detected *mimetype.MIME, contentType, container string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(contentType) || (container != "" && m.Is(container)) {
			return true
		}
	}
	return false
}

func invalidType(msg string) error {
	return &apperror.Error{
		Kind:    apperror.KindInvalidFileType,
		Message: msg,
		Fields:  []apperror.FieldError{{Field: "resume", Message: msg}},
	}
}
