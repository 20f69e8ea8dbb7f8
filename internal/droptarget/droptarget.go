// Package droptarget turns a drop gesture into the file handed to the upload transport.
//
// Terminals deliver a file dropped onto the window as pasted text: one or more paths, shell-quoted or
// backslash-escaped depending on the terminal, sometimes as file:// URIs. [ParsePayload] splits that text
// into candidate paths, [Collect] keeps the ones naming regular files, and [Extract] reads the first.
package droptarget

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

var getRuntime = func() string { return runtime.GOOS }

// ParsePayload splits pasted drop text into paths.
//
// Whitespace separates paths unless quoted ('...' or "...") or escaped with a backslash.
// On Windows the backslash is the path separator, so only quotes group words there.
// file:// URIs are decoded to local paths.
func ParsePayload(text string) []string {
	windows := getRuntime() == "windows"

	var (
		paths   []string
		current strings.Builder
		quote   rune
		escaped bool
		pending bool
	)

	flush := func() {
		if pending {
			paths = append(paths, fromURI(current.String(), windows))
		}
		current.Reset()
		pending = false
	}

	for _, r := range text {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else if r == '\\' && quote == '"' && !windows {
				escaped = true
			} else {
				current.WriteRune(r)
			}
		case r == '\\' && !windows:
			escaped = true
			pending = true
		case r == '\'' || r == '"':
			quote = r
			pending = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	flush()

	return paths
}

// fromURI converts a file:// URI to a local path and leaves anything else alone.
func fromURI(s string, windows bool) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || (u.Host != "" && u.Host != "localhost") {
		return s
	}
	if windows {
		// file:///C:/dir/a.png has the path /C:/dir/a.png
		p := u.Path
		if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		return strings.ReplaceAll(p, "/", `\`)
	}
	return filepath.FromSlash(u.Path)
}

// Collect returns the paths that name regular files, in their original order.
func Collect(paths []string) []string {
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, p)
	}
	return files
}

// Extract reads the first regular file among paths.
//
// Additional files are ignored. It returns [shared.ErrNoFiles] when no path names a regular file.
func Extract(paths []string) (*models.DroppedFile, error) {
	files := Collect(paths)
	if len(files) == 0 {
		return nil, shared.ErrNoFiles
	}
	return Load(files[0])
}

// Load reads the file at path into a [models.DroppedFile].
func Load(path string) (*models.DroppedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrUnreadable, err)
	}

	return &models.DroppedFile{
		Name:        filepath.Base(path),
		Size:        int64(len(data)),
		ContentType: DetectContentType(data),
		Data:        data,
	}, nil
}

// DetectContentType sniffs the MIME type of data, without parameters.
func DetectContentType(data []byte) string {
	mtype := mimetype.Detect(data)
	if mtype == nil {
		return "application/octet-stream"
	}
	ct, _, _ := strings.Cut(mtype.String(), ";")
	return ct
}
