package wix

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

type importFileRequest struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	MimeType  string `json:"mimeType"`
}

type importFileResponse struct {
	File ImportedFile `json:"file"`
}

// ImportImage copies an external JPEG into the site's Media Manager
func (ic *instanceClient) ImportImage(ctx context.Context, url string) (f *ImportedFile, err error) {
	ctx, end := ic.trace(ctx, "import_file", "")
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return nil, err
	}
	var out importFileResponse
	resp, err = req.
		SetBody(importFileRequest{URL: url, MediaType: "IMAGE", MimeType: "image/jpeg"}).
		SetResult(&out).
		Post("/site-media/v1/files/import")
	if err = checkResponse("import file", resp, err); err != nil {
		return nil, err
	}
	if out.File.URL == "" && out.File.ID == "" {
		return nil, fmt.Errorf("wix import file: empty file in response")
	}
	return &out.File, nil
}
