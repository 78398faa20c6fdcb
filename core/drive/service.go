package drive

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

// RootFolder lists the folders at the top of the tree.
const RootFolder = "null"

var ErrMissingID = errors.New("missing id")

// Service talks to the file and folder endpoints.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

func (f Filter) query(folderKey string) url.Values {
	q := url.Values{}
	if id := core.CleanString(f.FolderID); id != "" {
		q.Set(folderKey, id)
	}
	if id := core.CleanString(f.ClassID); id != "" {
		q.Set("class_id", id)
	}
	return q
}

func (svc *Service) Files(ctx context.Context, f Filter) ([]File, error) {
	files := make([]File, 0)
	err := svc.api.Do(ctx, core.Get("/files", f.query("folder_id")), &files)
	return files, err
}

func (svc *Service) File(ctx context.Context, id string) (File, error) {
	var file File
	if id = core.CleanString(id); id == "" {
		return file, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/files/"+url.PathEscape(id)), &file)
	return file, err
}

// Upload sends the file as multipart form data.
func (svc *Service) Upload(ctx context.Context, nu NewUpload) (File, error) {
	var file File
	if err := nu.Validate(); err != nil {
		return file, err
	}
	req := core.APIRequest{
		Method: http.MethodPost,
		Path:   "/files/upload",
		Upload: &core.Upload{
			Field:    "file",
			Filename: nu.Filename,
			Content:  nu.Content,
			Fields:   map[string]string{"folder_id": nu.FolderID, "class_id": nu.ClassID},
		},
	}
	err := svc.api.Do(ctx, req, &file)
	return file, err
}

func (svc *Service) DeleteFile(ctx context.Context, id string) error {
	if id = core.CleanString(id); id == "" {
		return ErrMissingID
	}
	return svc.api.Do(ctx, core.Delete("/files/"+url.PathEscape(id)), nil)
}

// Folders lists folders. Use RootFolder as f.FolderID for the top level.
func (svc *Service) Folders(ctx context.Context, f Filter) ([]Folder, error) {
	folders := make([]Folder, 0)
	err := svc.api.Do(ctx, core.Get("/folders", f.query("parent_id")), &folders)
	return folders, err
}

func (svc *Service) CreateFolder(ctx context.Context, nf NewFolder) (Folder, error) {
	var folder Folder
	if err := nf.Validate(); err != nil {
		return folder, err
	}
	err := svc.api.Do(ctx, core.Post("/folders", nf), &folder)
	return folder, err
}

// DeleteFolder deletes a folder and the files it holds.
func (svc *Service) DeleteFolder(ctx context.Context, id string) error {
	if id = core.CleanString(id); id == "" {
		return ErrMissingID
	}
	return svc.api.Do(ctx, core.Delete("/folders/"+url.PathEscape(id)), nil)
}
