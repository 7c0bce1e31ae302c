package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage reads CLOUDINARY_URL from the environment. References
// are the secure URLs Cloudinary returns.
func NewCloudinaryStorage(folder string) (FileStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

func (s *cloudinaryStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	dir, file := path.Split(key)
	params := uploader.UploadParams{
		Folder:       strings.Trim(path.Join(s.folder, dir), "/"),
		PublicID:     strings.TrimSuffix(file, path.Ext(file)),
		Overwrite:    api.Bool(false),
		ResourceType: resourceType(contentType),
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}
	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, ref string) error {
	publicID, kind := extractPublicID(ref)
	if publicID == "" {
		return fmt.Errorf("%w: could not extract public ID from %s", ErrInvalidKey, ref)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: kind,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}
	return nil
}

func (s *cloudinaryStorage) Locate(_ context.Context, ref string) (Location, error) {
	if _, err := url.ParseRequestURI(ref); err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidKey, ref)
	}
	return Location{URL: ref}, nil
}

// Audio is stored as "video" in Cloudinary; PDFs and anything else as raw.
func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "audio/"), strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw"
	}
}

// extractPublicID returns the public id and resource type of a delivery URL.
// https://res.cloudinary.com/demo/image/upload/v123/plantspeak/photos/ab12cd34.jpg
// -> plantspeak/photos/ab12cd34, image
func extractPublicID(fileURL string) (string, string) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex < 1 || uploadIndex+1 >= len(parts) {
		return "", ""
	}
	kind := parts[uploadIndex-1]

	relevant := parts[uploadIndex+1:]
	if len(relevant) > 1 && isVersion(relevant[0]) {
		relevant = relevant[1:]
	}

	withExt := strings.Join(relevant, "/")
	if kind == "raw" {
		return withExt, kind
	}
	return strings.TrimSuffix(withExt, path.Ext(withExt)), kind
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
