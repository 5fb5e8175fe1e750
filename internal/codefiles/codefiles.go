// Package codefiles keeps .py code files next to the .json revision files of
// an on-disk revision store export.
package codefiles

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"revision-runtime/backend/pkg/models"
)

// findFiles returns every regular file under root whose name ends with ext.
func findFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ReadRevision decodes a single revision JSON file.
func ReadRevision(path string) (*models.TransformationRevision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr models.TransformationRevision
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &tr, nil
}

// LoadRevisions decodes every .json revision file below root.
func LoadRevisions(root string) ([]*models.TransformationRevision, error) {
	paths, err := findFiles(root, ".json")
	if err != nil {
		return nil, err
	}
	revisions := make([]*models.TransformationRevision, 0, len(paths))
	for _, p := range paths {
		tr, err := ReadRevision(p)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, tr)
	}
	return revisions, nil
}

// WriteCodeFiles writes the source of every component revision file below
// root into a sibling file with the same base name and a .py extension.
// It returns the paths written.
func WriteCodeFiles(root string) ([]string, error) {
	paths, err := findFiles(root, ".json")
	if err != nil {
		return nil, err
	}
	var written []string
	for _, p := range paths {
		tr, err := ReadRevision(p)
		if err != nil {
			return written, err
		}
		if !tr.IsComponent() {
			continue
		}
		code, err := tr.Code()
		if err != nil {
			return written, err
		}
		codePath := swapExt(p, ".py")
		if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
			return written, err
		}
		written = append(written, codePath)
	}
	return written, nil
}

// RemoveCodeFiles deletes every .py file below root that has a sibling .json
// file with the same base name. Other .py files are left alone.
func RemoveCodeFiles(root string) ([]string, error) {
	paths, err := findFiles(root, ".py")
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, p := range paths {
		info, err := os.Stat(swapExt(p, ".json"))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(p); err != nil {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}

// WriteAllCodeFiles exports the source of every component revision file
// below sourceDir into the flat directory targetDir.
func WriteAllCodeFiles(sourceDir, targetDir string) ([]string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, err
	}
	paths, err := findFiles(sourceDir, ".json")
	if err != nil {
		return nil, err
	}
	var written []string
	for _, p := range paths {
		tr, err := ReadRevision(p)
		if err != nil {
			return written, err
		}
		if !tr.IsComponent() {
			continue
		}
		code, err := tr.Code()
		if err != nil {
			return written, err
		}
		base := strings.SplitN(filepath.Base(p), ".", 2)[0]
		codePath := filepath.Join(targetDir, base+".py")
		if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
			return written, err
		}
		written = append(written, codePath)
	}
	return written, nil
}
