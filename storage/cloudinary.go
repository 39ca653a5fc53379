package storage

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryClient struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a Client from a CLOUDINARY_URL-style URL.
func NewCloudinary(url string) (Client, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &cloudinaryClient{cld: cld}, nil
}

func (c *cloudinaryClient) Put(ctx context.Context, key, localFile string) (*PutResult, error) {
	res, err := c.cld.Upload.Upload(ctx, localFile, uploader.UploadParams{
		PublicID: key,
	})
	if err != nil {
		return nil, err
	}
	return &PutResult{URL: res.SecureURL, Name: res.PublicID}, nil
}

func (c *cloudinaryClient) Delete(ctx context.Context, key string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	return err
}

func (c *cloudinaryClient) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		PublicIDs: api.CldAPIArray(keys),
	})
	return err
}
