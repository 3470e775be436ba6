package task

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/KrikINS/floor-ready/internal/core/identity"
)

// MaxAttachmentSize is the upload limit in bytes (10 MiB).
const MaxAttachmentSize = 10 << 20

// allowedTypes are the accepted MIME types keyed by canonical name.
var allowedTypes = map[string]string{
	"image/jpeg":         "jpeg",
	"image/png":          "png",
	"image/webp":         "webp",
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
}

// AllowedTypes lists the accepted MIME types.
func AllowedTypes() []string {
	out := make([]string, 0, len(allowedTypes))
	for k := range allowedTypes {
		out = append(out, k)
	}
	return out
}

// AttachmentContext records why a file was attached.
type AttachmentContext string

const (
	ContextCreation   AttachmentContext = "creation"
	ContextSubmission AttachmentContext = "submission"
	ContextComment    AttachmentContext = "comment"
)

// IsValid reports whether c is a known context.
func (c AttachmentContext) IsValid() bool {
	switch c {
	case ContextCreation, ContextSubmission, ContextComment:
		return true
	}
	return false
}

// Attachment is an immutable file record owned by a task.
type Attachment struct {
	ID         string            `json:"id"`
	TaskID     string            `json:"task_id"`
	FileName   string            `json:"file_name"`
	FilePath   string            `json:"file_path"`
	FileType   string            `json:"file_type"`
	FileSize   int64             `json:"file_size"`
	UploadedBy string            `json:"uploaded_by"`
	Context    AttachmentContext `json:"context"`
	CreatedAt  time.Time         `json:"created_at"`
	URL        string            `json:"url,omitempty"`
}

// Upload is a file read into memory and checked against the limits.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length.
func (u Upload) Size() int64 { return int64(len(u.Data)) }

// Reader returns a fresh reader over the payload.
func (u Upload) Reader() io.Reader { return bytes.NewReader(u.Data) }

// ReadUpload reads r up to the size limit and resolves the content type.
// The declared type wins unless it is empty or generic, in which case the
// type is sniffed from the content.
func ReadUpload(name, declared string, r io.Reader) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAttachmentSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxAttachmentSize {
		return Upload{}, fmt.Errorf("%w: file exceeds the %d MiB size limit", ErrValidation, MaxAttachmentSize>>20)
	}
	if len(data) == 0 {
		return Upload{}, fmt.Errorf("%w: file is empty", ErrValidation)
	}

	contentType := normalizeType(declared)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = normalizeType(mimetype.Detect(data).String())
	}

	if _, ok := allowedTypes[contentType]; !ok {
		return Upload{}, fmt.Errorf("%w: file type %q is not allowed (jpeg, png, webp, pdf, doc, docx, xls, xlsx)", ErrValidation, contentType)
	}

	return Upload{Name: name, ContentType: contentType, Data: data}, nil
}

func normalizeType(t string) string {
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(t, ";", 2)[0])
	}
	mt = strings.ToLower(mt)
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// AuthorizeUpload applies the attachment gating policy. Every context needs a
// participant (the assignee or an Admin/Manager). Submission evidence also
// needs the assignee on an in-progress task; creation briefs need a task that
// has not left Pending. Comments are not gated by status.
func AuthorizeUpload(t Task, actor identity.Actor, c AttachmentContext) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: unknown attachment context %q", ErrValidation, c)
	}

	perms := PermissionsFor(t, actor)
	if perms.IsObserver() {
		return fmt.Errorf("%w: actor %q may not attach files to task %s", ErrUnauthorized, actor.ID, t.ID)
	}

	switch c {
	case ContextSubmission:
		if !perms.CanUpload() {
			return fmt.Errorf("%w: submission files can only be added by the assignee while the task is in progress", ErrUnauthorized)
		}
	case ContextCreation:
		if t.Status.Canonical() != StatusPending {
			return fmt.Errorf("%w: creation files can only be added while the task is pending", ErrUnauthorized)
		}
	}

	return nil
}

// AuthorizeCreatorUpload lets the member who just created t attach an initial
// brief, whether or not they are a participant.
func AuthorizeCreatorUpload(t Task, actor identity.Actor, c AttachmentContext) error {
	if c != ContextCreation {
		return AuthorizeUpload(t, actor, c)
	}
	if !actor.IsActive() {
		return fmt.Errorf("%w: actor %q is not active", ErrUnauthorized, actor.ID)
	}
	if t.Status.Canonical() != StatusPending {
		return fmt.Errorf("%w: creation files can only be added while the task is pending", ErrUnauthorized)
	}
	return nil
}
