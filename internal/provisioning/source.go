// Package provisioning reads provisioning files (topic definitions, Avro schemas) from a
// gocloud.dev blob bucket. A plain directory path is served by fileblob; anything with a
// URL scheme is opened through blob.OpenBucket.
package provisioning

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// ErrFileNotFound is returned when a provisioning file does not exist in the bucket.
var ErrFileNotFound = apperrors.Wrap(apperrors.ErrNotFound, "provisioning file not found")

// Source serves provisioning files from a blob bucket.
type Source struct {
	bucket *blob.Bucket
}

// NewSource wraps an already opened bucket.
func NewSource(bucket *blob.Bucket) *Source {
	return &Source{bucket: bucket}
}

// OpenSource opens location as a bucket. Directories are opened with fileblob; URLs
// such as file:///srv/provisioning or mem:// go through the registered blob drivers.
func OpenSource(ctx context.Context, location string) (*Source, error) {
	if location == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "provisioning source is empty")
	}

	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to open provisioning bucket %q", location)
		}
		return NewSource(bucket), nil
	}

	bucket, err := fileblob.OpenBucket(location, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open provisioning directory %q", location)
	}
	return NewSource(bucket), nil
}

// ReadFile returns the content stored under key, or ErrFileNotFound.
func (s *Source) ReadFile(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrapf(ErrFileNotFound, "%s", key)
		}
		return nil, apperrors.Wrapf(err, "failed to read %s", key)
	}
	return data, nil
}

// ListKeys returns the sorted keys under prefix that end with suffix.
func (s *Source) ListKeys(ctx context.Context, prefix, suffix string) ([]string, error) {
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})

	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to list %s", prefix)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, suffix) {
			continue
		}
		keys = append(keys, obj.Key)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close releases the underlying bucket.
func (s *Source) Close() error {
	return s.bucket.Close()
}
