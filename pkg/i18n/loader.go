package i18n

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithMessagesFS loads YAML catalogs from a filesystem. Each *.yml/*.yaml
// file holds one language, named by the file stem ("ru.yml"), mapping
// message templates to translations:
//
//	"Your request is invalid.": "Некорректный запрос."
func WithMessagesFS(fsys fs.FS, dir string) Option {
	return func(c *Catalog) error {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return fmt.Errorf("read catalog dir %q: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ext != ".yml" && ext != ".yaml" {
				continue
			}
			lang := strings.TrimSuffix(entry.Name(), ext)
			if lang == "" {
				continue
			}

			raw, err := fs.ReadFile(fsys, filepath.Join(dir, entry.Name()))
			if err != nil {
				return fmt.Errorf("read catalog %q: %w", entry.Name(), err)
			}
			messages := make(map[string]string)
			if err := yaml.Unmarshal(raw, &messages); err != nil {
				return fmt.Errorf("parse catalog %q: %w", entry.Name(), err)
			}
			if err := WithMessages(lang, messages)(c); err != nil {
				return err
			}
		}
		return nil
	}
}
