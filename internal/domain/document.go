package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CaseFileID uuid.UUID `json:"case_file_id" db:"case_file_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	StorageKey string    `json:"-" db:"storage_key"`
	URL        string    `json:"url" db:"-"`
	UploadedBy uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FileUpload is a file received from a client, not yet stored.
type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
