// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlarchive packs the downloaded spreadsheet tree into a zip archive.
package sbsctlarchive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlpath"
	"github.com/spf13/afero"
)

// WriteZip writes every file under dirPath to writer as a zip archive and
// returns the number of files written.
//
// The download staging directory is skipped, as is excludeFilePath if it is
// inside dirPath, so the archive can be written into the directory it packs.
// Entry names are slash-separated paths relative to dirPath.
func WriteZip(fs afero.Fs, dirPath string, writer io.Writer, excludeFilePath string) (_ int, retErr error) {
	zipWriter := zip.NewWriter(writer)
	defer func() {
		retErr = errors.Join(retErr, zipWriter.Close())
	}()
	var fileCount int
	if err := afero.Walk(fs, dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == excludeFilePath {
			return nil
		}
		if info.IsDir() && sbsctlpath.IsDownloadsDirName(info.Name()) {
			return filepath.SkipDir
		}
		relPath, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		// Skip the root directory entry.
		if relPath == "." {
			return nil
		}
		name := filepath.ToSlash(relPath)
		if info.IsDir() {
			_, err := zipWriter.Create(name + "/")
			return err
		}
		if err := addFile(fs, zipWriter, path, name, info); err != nil {
			return err
		}
		fileCount++
		return nil
	}); err != nil {
		return 0, fmt.Errorf("creating zip archive: %w", err)
	}
	return fileCount, nil
}

func addFile(fs afero.Fs, zipWriter *zip.Writer, path string, name string, info os.FileInfo) (retErr error) {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	file, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	_, err = io.Copy(writer, file)
	return err
}
