package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	apperr "github.com/matzehuels/html2deck/pkg/errors"
)

// IsHTML reports whether name has an .html or .htm extension.
func IsHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// DiscoverInputs resolves a file or directory argument to the HTML files
// to convert. Directories are not searched recursively; their files come
// back in natural order (see [SortInputs]).
//
// A missing path reports FILE_NOT_FOUND, a file that is not HTML reports
// INVALID_INPUT.
func DiscoverInputs(path string) ([]string, error) {
	if err := apperr.ValidateInputPath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "input path does not exist: %s", path)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "stat %s", path)
	}

	if !info.IsDir() {
		if !IsHTML(path) {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "input file is not an HTML file: %s", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "read directory %s", path)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsHTML(e.Name()) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	SortInputs(files)
	return files, nil
}

var fileNumberRe = regexp.MustCompile(`file_(\d+)\.html?$`)

// fileNumber returns n for names like "file_<n>.html".
func fileNumber(path string) (int, bool) {
	m := fileNumberRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// SortInputs orders paths by the number in "file_<n>.html" names, so that
// file_2 precedes file_10. Names without a number follow, by name.
func SortInputs(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		na, oka := fileNumber(a)
		nb, okb := fileNumber(b)
		switch {
		case oka && okb && na != nb:
			return na - nb
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		}
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})
}
