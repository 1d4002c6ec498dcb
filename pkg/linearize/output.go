package linearize

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// PageFileName returns the file name used for a page's text artifact
func PageFileName(page int) string {
	return fmt.Sprintf("page_%d.txt", page)
}

// WritePages writes one page_<n>.txt file per page into dir, creating dir if
// needed. Rewriting the same pages is safe.
func WritePages(dir string, pages map[int]string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for page, text := range pages {
		path := filepath.Join(dir, PageFileName(page))
		if err := writePageFile(path, text); err != nil {
			return fmt.Errorf("failed to write page %d: %w", page, err)
		}
	}
	return nil
}

// writePageFile writes text to path. The file is flushed and closed on every
// return path and a close error is reported when nothing else failed.
func writePageFile(path, text string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if _, err = w.WriteString(text); err != nil {
		return err
	}
	return w.Flush()
}
