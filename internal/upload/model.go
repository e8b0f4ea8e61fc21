package upload

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultMaxSize is the resume size ceiling (5 MiB).
	DefaultMaxSize int64 = 5 << 20

	// UnknownSize is passed to Receive when the caller has no declared size.
	UnknownSize int64 = -1
)

type contentRule struct {
	ext       string
	container string
}

// allowed maps each accepted content type to the extension used on disk and
// to the container type its sniffed bytes may report instead.
var allowed = map[string]contentRule{
	ContentTypePDF:  {ext: ".pdf"},
	ContentTypeDOC:  {ext: ".doc", container: "application/x-ole-storage"},
	ContentTypeDOCX: {ext: ".docx", container: "application/zip"},
}

// File is an upload accepted into the intake directory.
type File struct {
	StorageName string `json:"storageName"`
	Extension   string `json:"extension"`
	Path        string `json:"-"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
