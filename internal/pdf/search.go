package pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/acrofill/acrofill/internal/pdf/security"
)

// Search discovers PDF files on disk for the directory tools.
type Search struct {
	validator *Validator
}

// NewSearch creates a search handler whose results are limited to
// valid PDFs no larger than maxFileSize.
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
	}
}

// SearchDirectory walks the directory tree and returns every valid PDF
// whose filename matches the optional query.
func (s *Search) SearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	files, absDir, err := s.scan(req.Directory, req.Query, 0)
	if err != nil {
		return nil, err
	}

	return &PDFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDir,
		SearchQuery: req.Query,
	}, nil
}

// FindPDFsInDirectory returns all valid PDFs under the directory.
func (s *Search) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	files, _, err := s.scan(directory, "", 0)
	return files, err
}

// FindPDFsInDirectoryLimited returns at most limit PDFs from the
// directory tree. A limit of zero or less means no limit.
func (s *Search) FindPDFsInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	files, _, err := s.scan(directory, "", limit)
	return files, err
}

// CountPDFsInDirectory counts the valid PDF files under the directory.
func (s *Search) CountPDFsInDirectory(directory string) (int, error) {
	files, err := s.FindPDFsInDirectory(directory)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// scan is the walk shared by the search entry points. Hidden
// directories are skipped, symlinks that leave the tree are ignored,
// and unreadable entries never fail the walk. A positive limit caps
// the number of results.
func (s *Search) scan(directory, query string, limit int) ([]FileInfo, string, error) {
	if directory == "" {
		return nil, "", fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("directory does not exist: %s", directory)
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve directory path: %w", err)
	}
	bounds, err := security.NewPathValidator(absDir)
	if err != nil {
		return nil, "", err
	}

	query = strings.ToLower(strings.TrimSpace(query))

	var files []FileInfo
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Unreadable entries are skipped, not fatal.
		}
		if d.IsDir() {
			if path != absDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if limit > 0 && len(files) >= limit {
			return filepath.SkipAll
		}
		if !hasPDFExtension(d.Name()) {
			return nil
		}

		// A symlinked PDF may point outside the tree being searched.
		if within, err := bounds.IsPathWithinDirectory(path); err != nil || !within {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Entry vanished mid-walk, skip it.
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // Invalid candidates are skipped, not fatal.
		}
		if !s.matchesQuery(d.Name(), query) {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("error walking directory: %w", err)
	}

	return files, absDir, nil
}

// matchesQuery reports whether the filename matches the query: first
// by plain substring, then by requiring every query word to appear
// within some word of the filename.
func (s *Search) matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	query = strings.ToLower(query)
	name := strings.ToLower(filename)
	stem := strings.TrimSuffix(name, ".pdf")
	if strings.Contains(name, query) || strings.Contains(stem, query) {
		return true
	}

	words := s.splitIntoWords(stem)
	for _, queryWord := range s.splitIntoWords(query) {
		if !anyWordContains(words, queryWord) {
			return false
		}
	}
	return true
}

// splitIntoWords lowercases the text and splits it on the separators
// that show up in scanned filenames.
func (s *Search) splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}

func anyWordContains(words []string, sub string) bool {
	for _, word := range words {
		if strings.Contains(word, sub) {
			return true
		}
	}
	return false
}
