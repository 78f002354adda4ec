package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
)

// DiscoverFiles returns the .graphql files under root in lexical order. A
// root naming a file is returned as the only result.
func DiscoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == ".graphql" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk schema directory %q: %w", root, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .graphql files found in %q", root)
	}
	sort.Strings(files)
	return files, nil
}

// Load builds a schema from a single SDL file or from every .graphql file
// under a directory. Sources are named by their path relative to root so
// errors point at the file they came from.
func Load(root string) (*Schema, error) {
	files, err := DiscoverFiles(root)
	if err != nil {
		return nil, err
	}
	base := root
	if len(files) == 1 && files[0] == root {
		base = filepath.Dir(root)
	}
	srcs := make([]*language.Source, 0, len(files))
	for _, path := range files {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name, err := filepath.Rel(base, path)
		if err != nil {
			name = path
		}
		srcs = append(srcs, language.NewSource(string(body), filepath.ToSlash(name)))
	}
	return BuildFromSources(srcs...)
}

// BuildFromSources loads and validates SDL split across several sources.
// Errors are located in the source they were reported for.
func BuildFromSources(srcs ...*language.Source) (*Schema, error) {
	loaded, err := language.LoadSchema(srcs...)
	if err != nil {
		return nil, gqlerrors.FromParser(err, srcs...)
	}
	return BuildFromAST(loaded)
}
