package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSource loads a batch from one CSV file on disk.
type FileSource string

func (f FileSource) Name() string { return string(f) }

func (f FileSource) Load(_ context.Context) (Batch, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return Batch{}, fmt.Errorf("open %s: %w", f, err)
	}
	defer file.Close()

	return ParseCSV(string(f), file)
}

// FindCSVFiles recursively finds all CSV files under root.
func FindCSVFiles(root string) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			sources = append(sources, FileSource(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return sources, nil
}
