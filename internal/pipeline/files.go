package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	gokitfs "github.com/czcorpus/cnc-gokit/fs"
	"github.com/ppiankov/parlasf/internal/model"
)

// CollectFiles returns the corpus files under root in lexical order.
// A file root is returned as is. The metadata document is never included.
func CollectFiles(root string) ([]string, error) {
	isDir, err := gokitfs.IsDir(root)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", root, err)
	}
	if !isDir {
		isFile, err := gokitfs.IsFile(root)
		if err != nil || !isFile {
			return nil, fmt.Errorf("corpus path %s is neither a file nor a directory", root)
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".xml") || d.Name() == model.MetadataFileName {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
