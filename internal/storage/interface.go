// Package storage archives generated insight reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// Metadata describes an archived report.
type Metadata struct {
	ContentType  string            `json:"content_type,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
	StoreCount   int               `json:"store_count"`
	InsightCount int               `json:"insight_count"`
	Custom       map[string]string `json:"custom,omitempty"`
}

// FileInfo is what List and GetInfo report about an object.
type FileInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modified_at"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Storage is a key/value object store for report archives.
type Storage interface {
	// Put stores content at key, replacing any previous object.
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Get returns the content at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInfo returns size, checksum and metadata without the content.
	GetInfo(ctx context.Context, key string) (*FileInfo, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Type names a storage backend in configuration.
type Type string

const (
	TypeLocal Type = "local"
)

// ReportKey is the archive key of an insight report generated at t.
func ReportKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("reports/%s/insights-%s.json", t.Format("2006-01-02"), t.Format("150405"))
}

// ReportDayPrefix is the prefix of every report archived on day t.
func ReportDayPrefix(t time.Time) string {
	return "reports/" + t.UTC().Format("2006-01-02") + "/"
}
