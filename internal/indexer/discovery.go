package indexer

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/langspec"
)

// fileTask is one file discovery found: its absolute path, path
// relative to the project root, and detected language.
type fileTask struct {
	AbsPath string
	RelPath string
	Lang    langspec.Language
}

// discoverFiles walks cfg.IndexRoot(), skipping excluded directories
// entirely (so a large excluded tree like node_modules is never
// descended into) and returning every file whose language is both
// detected and enabled in cfg.Index.Languages. Symlinked directories
// are followed, with a canonical-path visited set breaking any cycle
// a symlink loop would otherwise cause.
func discoverFiles(cfg *config.Config) ([]fileTask, error) {
	root := cfg.IndexRoot()
	var tasks []fileTask
	visited := make(map[string]bool)
	if err := walkDir(cfg, root, "", visited, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// walkDir recursively walks absDir, whose path relative to the project
// root is relDir, appending a fileTask for every enabled source file it
// finds. It refuses to re-enter a directory whose resolved canonical
// path it has already visited in this pass, which is what breaks a
// symlink cycle without needing Go's non-symlink-following WalkDir.
func walkDir(cfg *config.Config, absDir, relDir string, visited map[string]bool, tasks *[]fileTask) error {
	canon, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		canon = absDir
	}
	if visited[canon] {
		return nil
	}
	visited[canon] = true

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		absPath := filepath.Join(absDir, entry.Name())
		relPath := entry.Name()
		if relDir != "" {
			relPath = filepath.Join(relDir, entry.Name())
		}

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(absPath)
			if statErr != nil {
				continue // broken symlink, skip
			}
			isDir = target.IsDir()
		}

		if isDir {
			if cfg.IsExcluded(filepath.ToSlash(relPath) + "/") {
				continue
			}
			if err := walkDir(cfg, absPath, relPath, visited, tasks); err != nil {
				return err
			}
			continue
		}

		relSlash := filepath.ToSlash(relPath)
		if cfg.IsExcluded(relSlash) {
			continue
		}
		lang := cfg.LanguageForFile(absPath)
		if lang == "" {
			continue
		}

		*tasks = append(*tasks, fileTask{
			AbsPath: absPath,
			RelPath: relSlash,
			Lang:    langspec.Language(lang),
		})
	}
	return nil
}
