package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// gcsReader closes the object reader and the client together.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// splitGCSURL parses gs://bucket/path/to/object.
func splitGCSURL(u string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(u, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gcs url %q: want gs://bucket/object", u)
	}
	return bucket, object, nil
}

func openGCS(ctx context.Context, u string) (io.ReadCloser, error) {
	bucket, object, err := splitGCSURL(u)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return &gcsReader{Reader: r, client: client}, nil
}
