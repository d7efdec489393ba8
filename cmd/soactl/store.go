package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/soa/blobstore"
	minioblob "github.com/hupe1980/soa/blobstore/minio"
	s3blob "github.com/hupe1980/soa/blobstore/s3"
)

// openLocation resolves a snapshot location to a store and a blob name
// (or listing prefix) within it.
func openLocation(ctx context.Context, location string) (blobstore.BlobStore, string, error) {
	if !strings.Contains(location, "://") {
		return blobstore.NewLocalStore(filepath.Dir(location)), filepath.Base(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, "", err
	}
	bucket := u.Host
	name := strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return nil, "", fmt.Errorf("missing bucket in %q", location)
	}

	switch u.Scheme {
	case "s3":
		var opts []s3blob.Option
		if s3Region != "" {
			opts = append(opts, s3blob.WithRegion(s3Region))
		}
		if s3Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(s3Endpoint))
		}
		opts = append(opts, s3blob.WithPathStyle(s3PathStyle))
		store, err := s3blob.New(ctx, bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, name, nil
	case "minio":
		client, err := minioblob.NewClient(minioEndpoint, minioAccessKey, minioSecretKey, minioSecure)
		if err != nil {
			return nil, "", err
		}
		return minioblob.NewStore(client, bucket, ""), name, nil
	case "file":
		path := u.Path
		return blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path), nil
	default:
		return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

// openDir resolves a location naming a directory or prefix.
func openDir(ctx context.Context, location string) (blobstore.BlobStore, string, error) {
	if !strings.Contains(location, "://") {
		return blobstore.NewLocalStore(location), "", nil
	}
	return openLocation(ctx, location)
}
