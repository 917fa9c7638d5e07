package archive

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

const (
	// MaxScanDepth bounds the recursive fallback scan below the scratch root.
	MaxScanDepth = 6
	// MaxScanEntries bounds the number of entries the fallback scan visits.
	MaxScanEntries = 20000
)

var errScanLimit = errors.New("scan limit reached")

// ExportPaths holds the located export files. Multi-part files are listed in
// part order.
type ExportPaths struct {
	Profile   string
	Posts     []string
	Followers []string
	Following []string
}

// layout describes where one logical file has been found across export
// format versions.
type layout struct {
	dirs    []string
	pattern *regexp.Regexp
}

// Candidate directories are tried in order, newest export format first.
var layouts = map[ExportKind]layout{
	KindProfile: {
		dirs: []string{
			"personal_information/personal_information",
			"personal_information",
			"account_information",
			"profile",
			".",
		},
		pattern: regexp.MustCompile(`^(personal_information|profile)\.json$`),
	},
	KindPosts: {
		dirs: []string{
			"your_instagram_activity/content",
			"your_instagram_activity/media",
			"content",
			"media",
			".",
		},
		pattern: regexp.MustCompile(`^posts(_\d+)?\.json$`),
	},
	KindFollowers: {
		dirs: []string{
			"connections/followers_and_following",
			"followers_and_following",
			"connections",
			".",
		},
		pattern: regexp.MustCompile(`^followers(_\d+)?\.json$`),
	},
	KindFollowing: {
		dirs: []string{
			"connections/followers_and_following",
			"followers_and_following",
			"connections",
			".",
		},
		pattern: regexp.MustCompile(`^following(_\d+)?\.json$`),
	},
}

// Discover locates every required export file below root. The first logical
// file that cannot be found yields a *MissingExportFileError.
func Discover(fs afero.Fs, root string) (ExportPaths, error) {
	var paths ExportPaths

	for _, kind := range RequiredKinds {
		found, err := locate(fs, root, layouts[kind])
		if err != nil {
			return ExportPaths{}, err
		}
		if len(found) == 0 {
			return ExportPaths{}, &MissingExportFileError{Kind: kind}
		}

		switch kind {
		case KindProfile:
			paths.Profile = found[0]
		case KindPosts:
			paths.Posts = found
		case KindFollowers:
			paths.Followers = found
		case KindFollowing:
			paths.Following = found
		}
	}

	return paths, nil
}

// locate tries the known candidate directories first and falls back to a
// bounded scan of the whole tree.
func locate(fs afero.Fs, root string, l layout) ([]string, error) {
	for _, dir := range l.dirs {
		matches, err := matchInDir(fs, filepath.Join(root, dir), l.pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return matches, nil
		}
	}
	return scan(fs, root, l.pattern)
}

func matchInDir(fs afero.Fs, dir string, pattern *regexp.Regexp) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		// A file where a directory was expected is a layout mismatch, not a failure
		if info, statErr := fs.Stat(dir); statErr == nil && !info.IsDir() {
			return nil, nil
		}
		return nil, err
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		matches = append(matches, filepath.Join(dir, entry.Name()))
	}
	sortParts(matches)
	return matches, nil
}

// scan walks the tree below root and returns the matches of the
// lexically first directory that contains any.
func scan(fs afero.Fs, root string, pattern *regexp.Regexp) ([]string, error) {
	byDir := make(map[string][]string)
	visited := 0

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		visited++
		if visited > MaxScanEntries {
			return errScanLimit
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}

		if info.IsDir() {
			if depth > MaxScanDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if pattern.MatchString(info.Name()) {
			dir := filepath.Dir(path)
			byDir[dir] = append(byDir[dir], path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errScanLimit) {
		return nil, err
	}

	if len(byDir) == 0 {
		return nil, nil
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	matches := byDir[dirs[0]]
	sortParts(matches)
	return matches, nil
}

var partSuffix = regexp.MustCompile(`_(\d+)\.json$`)

// sortParts orders multi-part export files numerically (posts_2 before posts_10).
func sortParts(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		pi, pj := partNumber(paths[i]), partNumber(paths[j])
		if pi != pj {
			return pi < pj
		}
		return paths[i] < paths[j]
	})
}

func partNumber(path string) int {
	m := partSuffix.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
