package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// FileRecord is one stored file as the backend reports it. ViewUrl is
// server-relative; join it with Client.ViewURL before display.
type FileRecord struct {
	ID               int64  `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	SizeInBytes      int64  `json:"sizeInBytes"`
	ContentType      string `json:"contentType"`
	OwnerID          int64  `json:"ownerId"`
	PublicToAll      bool   `json:"publicToAll"`
	ViewURL          string `json:"viewUrl"`
	CreateTime       string `json:"createTime"`
}

// filePage mirrors the backend's PageResponse wrapper.
type filePage struct {
	Current int64        `json:"current"`
	Size    int64        `json:"size"`
	Total   int64        `json:"total"`
	Pages   int64        `json:"pages"`
	Records []FileRecord `json:"records"`
}

// Upload is one file payload for the upload endpoints.
type Upload struct {
	Name    string
	Content []byte
}

// ListFilesBySource fetches the files attached to one (srcID, fileType)
// scope. It returns the page's records plus the server's total count.
func (c *Client) ListFilesBySource(ctx context.Context, srcID, fileType string, page, size int) ([]FileRecord, int64, error) {
	query := url.Values{
		"srcId":    {srcID},
		"fileType": {fileType},
		"page":     {strconv.Itoa(page)},
		"size":     {strconv.Itoa(size)},
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/files/by-source", query, nil, "")
	if err != nil {
		return nil, 0, err
	}
	var result filePage
	if err := c.do(req, &result); err != nil {
		return nil, 0, err
	}
	return result.Records, result.Total, nil
}

// UploadFile submits a single file scoped to (srcID, fileType). Scope
// metadata travels in query parameters, not form fields. Only the status
// class is trusted: server-assigned ids and view paths must come from a
// subsequent ListFilesBySource.
func (c *Client) UploadFile(ctx context.Context, srcID, fileType string, file Upload) error {
	query := url.Values{
		"srcId":    {srcID},
		"fileType": {fileType},
	}
	body, contentType, err := multipartBody("file", []Upload{file})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/files/upload", query, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// BatchUploadFiles submits several files in one request under the repeated
// multipart field "files". The response body carries per-record results but
// is deliberately not decoded; callers reload the scope list instead.
func (c *Client) BatchUploadFiles(ctx context.Context, srcID, fileType string, files []Upload, publicToAll bool) error {
	if len(files) == 0 {
		return fmt.Errorf("api: batch upload requires at least one file")
	}
	query := url.Values{
		"srcId":       {srcID},
		"fileType":    {fileType},
		"publicToAll": {strconv.FormatBool(publicToAll)},
	}
	body, contentType, err := multipartBody("files", files)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/files/batch-upload", query, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DeleteFile removes one stored file by id.
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/v1/files/%d", id), nil, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// UploadPublicImage uploads an unscoped, publicly visible image (article
// cover flow) and returns the created record.
func (c *Client) UploadPublicImage(ctx context.Context, file Upload) (FileRecord, error) {
	query := url.Values{"publicToAll": {"true"}}
	body, contentType, err := multipartBody("file", []Upload{file})
	if err != nil {
		return FileRecord{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/files/upload", query, body, contentType)
	if err != nil {
		return FileRecord{}, err
	}
	var record FileRecord
	if err := c.do(req, &record); err != nil {
		return FileRecord{}, err
	}
	return record, nil
}

// FileViewURL builds the absolute view URL for a file id.
func (c *Client) FileViewURL(id int64) string {
	return fmt.Sprintf("%s/v1/files/%d/view", c.baseURL, id)
}

func multipartBody(field string, files []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		name := file.Name
		if name == "" {
			name = "upload"
		}
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			return nil, "", fmt.Errorf("api: build multipart body: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("api: write multipart part %q: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("api: finish multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
