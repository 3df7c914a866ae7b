// Package assets fetches the external artifacts the monitor depends on,
// such as the GeoLite2 database and the relay binary.
package assets

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// Ensure downloads url to path unless the file already exists. The body
// lands in a temp file in the target directory and moves into place with a
// rename, so readers never observe a partial file.
func Ensure(path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	log.Printf("Downloading %s from %s...", filepath.Base(path), url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	log.Printf("Downloaded %s (%d bytes).", filepath.Base(path), n)
	return nil
}
