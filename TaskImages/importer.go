package TaskImages

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxBatchFiles caps a single batch upload. Extraction stops here even if
// the archive holds more entries. Variable so tests can lower it.
var MaxBatchFiles = 5000

const thumbnailWidth = 240

// ErrNotZip marks an upload whose bytes are not a readable ZIP archive.
var ErrNotZip = errors.New("not a valid zip archive")

var archiveExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// ExtractedImage describes one file written to the agent's folder.
type ExtractedImage struct {
	Filename string
	Path     string
}

// ExtractBatch unpacks archive bytes into the agent's image folder.
// Directories and non-image entries are skipped, entry names are stripped of
// any path components, and name collisions get a _1, _2, ... suffix.
func ExtractBatch(agentID string, archive []byte) ([]ExtractedImage, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, ErrNotZip
	}

	dir := AgentDir(agentID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var extracted []ExtractedImage
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name))
		if !archiveExtensions[ext] {
			continue
		}

		// Strip directory components so hostile entry names cannot
		// escape the agent folder.
		safeName := path.Base(filepath.ToSlash(file.Name))
		if safeName == "" || safeName == "." || safeName == ".." || safeName == "/" {
			continue
		}

		name := safeName
		base := strings.TrimSuffix(safeName, ext)
		for counter := 1; fileExists(filepath.Join(dir, name)); counter++ {
			name = fmt.Sprintf("%s_%d%s", base, counter, ext)
		}

		src, err := file.Open()
		if err != nil {
			log.Printf("skipping archive entry %s: %v", file.Name, err)
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			log.Printf("skipping archive entry %s: %v", file.Name, err)
			continue
		}

		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, data, 0644); err != nil {
			log.Printf("failed to write %s: %v", target, err)
			continue
		}
		writeThumbnail(dir, name, data)

		extracted = append(extracted, ExtractedImage{Filename: name, Path: target})
		if len(extracted) >= MaxBatchFiles {
			break
		}
	}
	return extracted, nil
}

// writeThumbnail renders a small preview for the admin console into the
// thumbs/ subfolder. Best-effort: an undecodable image is logged and
// skipped, never failing the batch.
func writeThumbnail(dir, name string, data []byte) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("thumbnail skipped for %s: %v", name, err)
		return
	}
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	thumbDir := filepath.Join(dir, "thumbs")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		log.Printf("thumbnail dir error: %v", err)
		return
	}
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		log.Printf("thumbnail save failed for %s: %v", name, err)
	}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
