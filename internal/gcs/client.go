// Package gcs wraps the Cloud Storage SDK for the job's two operations:
// downloading the feedback CSV and uploading the analysis JSON.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Sentinel conditions surfaced by Download and Upload so callers can report
// missing objects and permission problems distinctly.
var (
	ErrNotFound     = errors.New("object not found")
	ErrAccessDenied = errors.New("access denied")
)

// Client is a thin wrapper over *storage.Client using application-default
// credentials. No credential material is handled here directly.
type Client struct {
	client *storage.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Download reads the full object into memory.
func (c *Client) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, classifyError(err))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, classifyError(err))
	}
	return data, nil
}

// Upload writes data to the object, replacing any existing content.
func (c *Client) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	writer := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucket, object, classifyError(err))
	}
	// Writes are buffered; the upload only commits on Close.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write gs://%s/%s: %w", bucket, object, classifyError(err))
	}
	return nil
}

// classifyError maps SDK errors onto the package sentinels while keeping the
// original error in the chain.
func classifyError(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return err
}
