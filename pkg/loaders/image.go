package loaders

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob" // gs:// destinations
	_ "gocloud.dev/blob/memblob" // mem:// destinations
)

// EncodePNG encodes img as PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}

// WriteBucket encodes img as PNG and stores it under key in bucket
func WriteBucket(ctx context.Context, bucket *blob.Bucket, key string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "image/png"})
	if err != nil {
		return errors.Wrapf(err, "failed to open writer for %s", key)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "failed to finish writing %s", key)
	}
	return nil
}

// WriteImage saves img as a PNG at dest. dest is either a local file path,
// whose directory is created if needed, or a blob URL such as
// gs://bucket/renders/out.png or file:///tmp/out.png.
func WriteImage(ctx context.Context, img image.Image, dest string) error {
	bucket, key, err := openDestination(ctx, dest)
	if err != nil {
		return err
	}
	defer bucket.Close()

	return WriteBucket(ctx, bucket, key, img)
}

// openDestination splits dest into an open bucket and an object key
func openDestination(ctx context.Context, dest string) (*blob.Bucket, string, error) {
	if !strings.Contains(dest, "://") {
		dir, key := filepath.Split(filepath.Clean(dest))
		if key == "" || key == "." {
			return nil, "", errors.Errorf("output path %q has no file name", dest)
		}
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, "", errors.Wrapf(err, "failed to create output directory %s", dir)
		}
		bucket, err := fileblob.OpenBucket(dir, nil)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to open output directory %s", dir)
		}
		return bucket, key, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return nil, "", errors.Wrapf(err, "invalid output URL %q", dest)
	}

	var bucketURL, key string
	if u.Scheme == fileblob.Scheme {
		bucketURL = u.Scheme + "://" + filepath.ToSlash(filepath.Dir(u.Path))
		key = filepath.Base(u.Path)
	} else {
		bucketURL = u.Scheme + "://" + u.Host
		key = strings.TrimPrefix(u.Path, "/")
	}
	if u.RawQuery != "" {
		bucketURL += "?" + u.RawQuery
	}
	if key == "" || key == "." || key == "/" {
		return nil, "", errors.Errorf("output URL %q has no object key", dest)
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}
	return bucket, key, nil
}
