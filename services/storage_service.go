package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
)

// InterfaceStorageService defines the upload storage interface
type InterfaceStorageService interface {
	Save(file *multipart.FileHeader, field string) (string, error)
	SaveAll(files []*multipart.FileHeader, field string) ([]string, error)
}

// StorageService writes uploaded photos to local disk and hands back stable
// relative paths that the owning records store as opaque strings.
type StorageService struct {
	UploadDir string
}

// NewStorageService creates a new storage service
func NewStorageService(cfg *config.Config) InterfaceStorageService {
	return &StorageService{UploadDir: cfg.UploadDir}
}

// Save stores one uploaded file under a unique field-prefixed name
func (s *StorageService) Save(file *multipart.FileHeader, field string) (string, error) {
	if err := os.MkdirAll(s.UploadDir, 0755); err != nil {
		return "", code.Newf(code.ErrUnknown, "failed to create upload directory: %v", err)
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("%s-%s%s", field, uuid.NewString(), ext)
	dst := filepath.Join(s.UploadDir, name)

	src, err := file.Open()
	if err != nil {
		return "", code.Newf(code.ErrValidation, "failed to open upload: %v", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", code.Newf(code.ErrUnknown, "failed to store upload: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", code.Newf(code.ErrUnknown, "failed to store upload: %v", err)
	}

	return filepath.ToSlash(dst), nil
}

// SaveAll stores a group of uploaded files, preserving order
func (s *StorageService) SaveAll(files []*multipart.FileHeader, field string) ([]string, error) {
	var paths []string
	for _, file := range files {
		path, err := s.Save(file, field)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
