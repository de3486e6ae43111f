package location

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions treated as dictionary candidates.
var DefaultExtensions = []string{".txd", ".xml"}

// ScanDir lists the files in dir whose extension is one of exts (compared
// case-insensitively) and returns them as file locations sorted by path.
// Subdirectories are descended into only when recursive is set.
func ScanDir(dir string, exts []string, recursive bool) ([]Location, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(path, exts) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Strings(paths)
	locs := make([]Location, 0, len(paths))
	for _, p := range paths {
		locs = append(locs, NewFile(p))
	}
	return locs, nil
}

// Expand turns command-line style arguments into locations: directories are
// scanned with ScanDir, anything else is taken as a file path.
func Expand(args []string, exts []string, recursive bool) ([]Location, error) {
	var locs []Location
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			found, err := ScanDir(arg, exts, recursive)
			if err != nil {
				return nil, err
			}
			locs = append(locs, found...)
			continue
		}
		locs = append(locs, NewFile(arg))
	}
	return locs, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
