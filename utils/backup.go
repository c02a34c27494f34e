package utils

import (
	"io"
	"os"
	"path/filepath"
	"sort"
)

// EnsureBackupDir creates the backup directory if it doesn't exist
func EnsureBackupDir(dir string) error {
	return os.MkdirAll(dir, os.ModePerm)
}

// CopyFile copies src to dst, creating dst's directory when needed
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// PruneOldBackups deletes the oldest files in dir until at most keep remain.
func PruneOldBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	// Backup names embed a sortable timestamp.
	sort.Strings(names)

	for len(names) > keep {
		if err := os.Remove(filepath.Join(dir, names[0])); err != nil {
			return err
		}
		names = names[1:]
	}
	return nil
}
