package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/amirrezaskh/aria/internal/types"
)

// IndexDirectory walks root for .md and .txt files and adds each to the
// store, tagging chunks with their source path. Returns the number of files
// indexed.
func IndexDirectory(ctx context.Context, store Store, root string) (int, error) {
	var docs []types.Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		docs = append(docs, types.Document{
			Content:  string(data),
			Metadata: map[string]string{"source": rel},
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	if len(docs) == 0 {
		return 0, nil
	}
	if err := store.Add(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
