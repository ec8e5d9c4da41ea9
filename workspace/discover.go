package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tml/config"
)

// Discover returns the template files below root that cfg selects,
// sorted. Hidden directories and paths matched by root/.gitignore are
// skipped. Paths given to cfg.Matches are relative to the config's root
// when it was loaded from a file, otherwise to root.
func Discover(ctx context.Context, root string, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, err = gitignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			commonlog.GetLogger("tml.workspace").Warning("ignoring unreadable .gitignore", "path", gitignorePath, "error", err)
			ignore = nil
		}
	}

	matchRoot := root
	if cfg.Path != "" {
		matchRoot = cfg.Root()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if isHidden(d.Name()) {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if cfg.Matches(relativeTo(matchRoot, path, rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// relativeTo expresses path relative to base, falling back to rel when
// path is not below base.
func relativeTo(base, path, rel string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return rel
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return rel
	}
	r, err := filepath.Rel(absBase, absPath)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return rel
	}
	return r
}
