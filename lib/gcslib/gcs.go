package gcslib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/artie-labs/bulksync/lib/config"
)

type GCSClient struct {
	client *storage.Client
}

// NewGCSClient uses the credentials file from [settings] when set, otherwise Application Default Credentials.
func NewGCSClient(ctx context.Context, settings *config.GCP) (GCSClient, error) {
	var opts []option.ClientOption
	if settings != nil && settings.PathToCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(settings.PathToCredentials))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return GCSClient{}, fmt.Errorf("failed to create gcs client: %w", err)
	}

	return GCSClient{client: client}, nil
}

// Open streams the object at [uri] (gs://bucket/object), the caller closes the reader.
func (g GCSClient) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", uri, err)
	}

	return reader, nil
}

func (g GCSClient) Close() error {
	return g.client.Close()
}

func ParseGCSURI(uri string) (string, string, error) {
	bucket, object, found := strings.Cut(strings.TrimPrefix(uri, "gs://"), "/")
	if !strings.HasPrefix(uri, "gs://") || !found || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gcs uri %q, expected gs://bucket/object", uri)
	}

	return bucket, object, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist)
}
