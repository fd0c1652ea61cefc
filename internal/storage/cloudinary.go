package storage

import (
	"context"
	"errors"
	"log"

	"github.com/CarlJazper/PSPWEB/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudinaryStorage implements the ImageStorage interface against Cloudinary.
type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates an image storage service from a
// cloudinary:// URL.
func NewCloudinaryStorage(cfg config.CloudinaryConfig) (ImageStorage, error) {
	if cfg.URL == "" {
		return nil, errors.New("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		log.Printf("ERROR: Failed to initialize Cloudinary: %v", err)
		return nil, err
	}

	return &cloudinaryStorage{
		cld:    cld,
		folder: cfg.Folder,
	}, nil
}

// UploadImage uploads an image (base64 data URI or remote URL) and returns
// the hosted reference. Signature images are scaled down on upload.
func (c *cloudinaryStorage) UploadImage(ctx context.Context, data string) (*ImageUpload, error) {
	result, err := c.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:         c.folder,
		Transformation: "c_scale,w_150",
	})
	if err != nil {
		log.Printf("ERROR: Cloudinary upload failed: %v", err)
		return nil, err
	}
	if result.Error.Message != "" {
		log.Printf("ERROR: Cloudinary upload rejected: %s", result.Error.Message)
		return nil, errors.New(result.Error.Message)
	}

	return &ImageUpload{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
	}, nil
}

// DeleteImage removes a hosted image by its public ID.
func (c *cloudinaryStorage) DeleteImage(ctx context.Context, publicID string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Printf("ERROR: Cloudinary destroy failed for '%s': %v", publicID, err)
	}
	return err
}
