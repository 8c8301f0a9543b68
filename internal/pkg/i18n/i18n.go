package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const FallbackLocale = "en"

type Translations map[string]string

//go:embed locales
var embedded embed.FS

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

// LoadDefault loads the catalogs compiled into the binary.
func LoadDefault() error {
	return LoadTranslations(embedded, "locales")
}

// LoadTranslations reads <dir>/<locale>/labels.yaml for every locale
// directory under dir.
func LoadTranslations(fsys fs.FS, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		locale := entry.Name()
		filePath := path.Join(dir, locale, "labels.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var catalog struct {
			Labels Translations `yaml:"LABELS"`
		}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		locales[locale] = catalog.Labels
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != FallbackLocale {
		if trans, ok := locales[FallbackLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

func Translatef(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(Translate(locale, key), args...)
}

func Has(locale, key string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := locales[locale][key]
	return ok
}
