package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore uploads images to Cloudinary and references them by their
// secure delivery URL.
type CloudinaryStore struct {
	cld    *cld.Cloudinary
	prefix string
	maxDim int
}

func NewCloudinaryStore(cloudinaryURL string, prefix string, maxDim int) (*CloudinaryStore, error) {
	client, err := cld.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: client, prefix: strings.Trim(prefix, "/"), maxDim: maxDim}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, folder string, data []byte) (string, error) {
	normalized, err := NormalizeImage(data, s.maxDim)
	if err != nil {
		return "", err
	}

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(normalized), uploader.UploadParams{
		Folder:       s.folder(folder),
		PublicID:     uuid.NewString(),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload image: %s", res.Error.Message)
	}

	return res.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	publicID, err := publicIDFromURL(ref)
	if err != nil {
		return err
	}

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("destroy image: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("destroy image: %s", res.Error.Message)
	}
	return nil
}

func (s *CloudinaryStore) folder(folder string) string {
	if s.prefix == "" {
		return folder
	}
	return s.prefix + "/" + folder
}

// publicIDFromURL recovers "folder/name" from a delivery URL of the form
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.jpg.
func publicIDFromURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}

	_, rest, found := strings.Cut(u.Path, "/upload/")
	if !found || rest == "" {
		return "", errors.New("not a cloudinary delivery url")
	}

	if first, tail, ok := strings.Cut(rest, "/"); ok && len(first) > 1 && first[0] == 'v' && isDigits(first[1:]) {
		rest = tail
	}

	return strings.TrimSuffix(rest, path.Ext(rest)), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
