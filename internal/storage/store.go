// Package storage keeps docx templates and generated documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bobiverse/docxfill/internal/config"
)

var (
	// ErrNotFound - no object under key
	ErrNotFound = errors.New("storage: not found")

	// ErrReadOnly - store can not write
	ErrReadOnly = errors.New("storage: read-only")

	// ErrInvalidKey - key escapes store root or is empty
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Store - objects addressed by slash separated keys
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Content types of served files
const (
	ContentTypeDocx   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF    = "application/pdf"
	ContentTypeBinary = "application/octet-stream"
)

// ContentType - by file extension
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".docx":
		return ContentTypeDocx
	case ".pdf":
		return ContentTypePDF
	}
	return ContentTypeBinary
}

// cleanKey - reject empty keys and keys leaving store root
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(key), nil
}

// Prefixed - store where every key is under prefix ("templates/", "generated/")
type Prefixed struct {
	Store  Store
	Prefix string
}

// Get ..
func (p Prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

// Put ..
func (p Prefixed) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return p.Store.Put(ctx, p.Prefix+key, data, contentType)
}

// Stores - template source and output destination
type Stores struct {
	Templates Store
	Generated Store
}

// Open - stores for configured backend.
// Templates come over HTTP when template URL is configured.
func Open(ctx context.Context, cfg config.Config) (*Stores, error) {
	var base Store

	st := cfg.Storage
	switch st.Backend {
	case config.BackendFS:
		fs, err := NewFSStore(st.Dir)
		if err != nil {
			return nil, err
		}
		base = fs
	case config.BackendS3:
		s3, err := NewS3Store(ctx, S3Options{
			Endpoint: st.Endpoint,
			Region:   st.Region,
			Bucket:   st.Bucket,
			Key:      st.Key,
			Secret:   st.Secret,
		})
		if err != nil {
			return nil, err
		}
		base = s3
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", st.Backend)
	}

	stores := &Stores{
		Templates: Prefixed{Store: base, Prefix: cfg.TemplatesPrefix},
		Generated: Prefixed{Store: base, Prefix: cfg.GeneratedPrefix},
	}
	if st.TemplateURL != "" {
		stores.Templates = NewHTTPStore(st.TemplateURL, nil)
	}
	return stores, nil
}
