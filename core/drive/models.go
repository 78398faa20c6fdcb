package drive

import (
	"fmt"
	"io"

	"github.com/trezcool/prodigy/core"
)

type (
	File struct {
		ID          string `json:"id"`
		Filename    string `json:"filename"`
		FileType    string `json:"file_type,omitempty"`
		FileSize    int64  `json:"file_size"`
		FolderID    string `json:"folder_id,omitempty"`
		ClassID     string `json:"class_id,omitempty"`
		OwnerID     string `json:"owner_id"`
		TextContent string `json:"text_content,omitempty"`
		CreatedAt   string `json:"created_at,omitempty"`
	}

	Folder struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ParentID  string `json:"parent_id,omitempty"`
		ClassID   string `json:"class_id,omitempty"`
		OwnerID   string `json:"owner_id"`
		CreatedAt string `json:"created_at,omitempty"`
	}

	// Filter narrows a listing to a folder and/or a class.
	// Without ClassID, only the current user's own items are listed.
	Filter struct {
		FolderID string
		ClassID  string
	}
)

// HumanSize formats FileSize for display.
func (f File) HumanSize() string {
	const unit = 1024
	if f.FileSize < unit {
		return fmt.Sprintf("%d B", f.FileSize)
	}
	div, exp := int64(unit), 0
	for n := f.FileSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(f.FileSize)/float64(div), "KMGTPE"[exp])
}

// NewUpload is a file to upload.
type NewUpload struct {
	Filename string    `json:"filename" validate:"required,notblank"`
	Content  io.Reader `json:"-"`
	FolderID string    `json:"folder_id"`
	ClassID  string    `json:"class_id"`
}

func (nu *NewUpload) Validate() error {
	nu.Filename = core.CleanString(nu.Filename)
	nu.FolderID = core.CleanString(nu.FolderID)
	nu.ClassID = core.CleanString(nu.ClassID)
	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	if nu.Content == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	return nil
}

// NewFolder contains the information needed to create a folder.
type NewFolder struct {
	Name     string  `json:"name" validate:"required,notblank,max=100"`
	ParentID *string `json:"parent_id"`
	ClassID  *string `json:"class_id"`
}

func (nf *NewFolder) Validate() error {
	nf.Name = core.CleanString(nf.Name)
	nf.ParentID = optional(nf.ParentID)
	nf.ClassID = optional(nf.ClassID)
	return core.Validate.Struct(nf)
}

// optional turns blank strings into nil (JSON null).
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	if v := core.CleanString(*s); v != "" {
		return &v
	}
	return nil
}
