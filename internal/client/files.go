package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"

	"taskManager/internal/handlers/dto"
)

// Upload is one file for UploadFiles.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadFiles posts every upload in one multipart request and returns the
// stored image references in the same order.
func (c *Client) UploadFiles(ctx context.Context, uploads []Upload) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, path.Base(u.Name)))
		h.Set("Content-Type", u.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("creating part for %s: %w", u.Name, err)
		}
		if _, err := io.Copy(part, u.Body); err != nil {
			return nil, fmt.Errorf("copying %s: %w", u.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var out dto.UploadResponse
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// DeleteImage accepts either a bare file name or a stored reference.
func (c *Client) DeleteImage(ctx context.Context, name string) error {
	return c.mutate(ctx, http.MethodDelete, "/files/images/"+url.PathEscape(path.Base(name)), nil, nil)
}
