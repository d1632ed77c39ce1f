// Package scanner enumerates the text files of a directory.
package scanner

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	ignore "github.com/sabhiram/go-gitignore"
)

// ErrNotDirectory is returned when the scan root is missing or is not a
// directory.
var ErrNotDirectory = errors.New("directory not found")

// Options configures a Scanner.
type Options struct {
	// Ignore holds extra gitignore-style patterns, matched against the
	// file name relative to the root.
	Ignore []string

	// UseGitignore makes the scanner honor a .gitignore at the root.
	UseGitignore bool

	// Exclude lists files that are never yielded, such as the run's own
	// logs and dump. See Exclusions.
	Exclude []string
}

// Scanner lists the direct children of a directory that are regular text
// files. Subdirectories are never entered.
type Scanner struct {
	root string
	opts Options
}

// New creates a scanner rooted at root.
func New(root string, opts Options) *Scanner {
	return &Scanner{root: root, opts: opts}
}

// Root returns the scanned directory.
func (s *Scanner) Root() string { return s.root }

// Verify checks that the root exists and is a directory.
func Verify(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return nil
}

// Scan returns the text files of the root in name order, plus the paths it
// left out and why. Per-file sniffing failures are reported as skipped
// rather than failing the scan.
func (s *Scanner) Scan() (files []string, skipped []Skipped, err error) {
	if err := Verify(s.root); err != nil {
		return nil, nil, err
	}

	matcher, err := s.matcher()
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", s.root, err)
	}
	excluded := NewExclusions(s.opts.Exclude...)

	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if entry.IsDir() {
			continue
		}
		if excluded.Matches(path) {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonExcluded})
			continue
		}
		if matcher != nil && matcher.MatchesPath(entry.Name()) {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonIgnored})
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonUnreadable, Err: err})
			continue
		}
		if !info.Mode().IsRegular() {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonNotRegular})
			continue
		}
		if info.Size() == 0 {
			files = append(files, path)
			continue
		}

		text, err := IsText(path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonUnreadable, Err: err})
			continue
		}
		if !text {
			skipped = append(skipped, Skipped{Path: path, Reason: ReasonBinary})
			continue
		}
		files = append(files, path)
	}
	return files, skipped, nil
}

func (s *Scanner) matcher() (*ignore.GitIgnore, error) {
	gitignorePath := filepath.Join(s.root, ".gitignore")
	if s.opts.UseGitignore {
		if _, err := os.Stat(gitignorePath); err == nil {
			m, err := ignore.CompileIgnoreFileAndLines(gitignorePath, s.opts.Ignore...)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", gitignorePath, err)
			}
			return m, nil
		}
	}
	if len(s.opts.Ignore) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(s.opts.Ignore...), nil
}

// IsText sniffs the content of path and reports whether its MIME type is
// text/plain or one of its descendants (html, json, csv, ...) in a UTF-8
// compatible charset. Text in any other charset is reported as not text.
func IsText(path string) (bool, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	if !utf8Charset(mtype.String()) {
		return false, nil
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true, nil
		}
	}
	return false, nil
}

// utf8Charset reports whether the charset parameter of a detected MIME
// type, if any, is UTF-8 or ASCII.
func utf8Charset(detected string) bool {
	_, params, err := mime.ParseMediaType(detected)
	if err != nil {
		return false
	}
	switch strings.ToLower(params["charset"]) {
	case "", "utf-8", "us-ascii":
		return true
	}
	return false
}
