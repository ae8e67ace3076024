package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Catalog resolves message keys for a single matched language.
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// New loads the embedded catalogs and returns the one best matching the
// requested language, falling back to English for unknown tags.
func New(lang string) (*Catalog, error) {
	catalogs, tags, err := loadCatalogs()
	if err != nil {
		return nil, err
	}

	matcher := language.NewMatcher(tags)
	desired, parseErr := language.Parse(strings.TrimSpace(lang))
	if parseErr != nil {
		desired = language.English
	}
	_, index, _ := matcher.Match(desired)

	tag := tags[index]
	return &Catalog{tag: tag, messages: catalogs[tag.String()]}, nil
}

// Language returns the tag of the matched catalog.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// T returns the message for key, or the key itself when no message exists.
func (c *Catalog) T(key string) string {
	if c == nil {
		return key
	}
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

// Tf returns the message for key formatted with args.
func (c *Catalog) Tf(key string, args ...any) string {
	return fmt.Sprintf(c.T(key), args...)
}

func loadCatalogs() (map[string]map[string]string, []language.Tag, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, nil, fmt.Errorf("read locales: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	// English first so the matcher falls back to it.
	tags := []language.Tag{language.English}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".toml") {
			continue
		}
		code := strings.TrimSuffix(name, ".toml")
		tag, err := language.Parse(code)
		if err != nil {
			return nil, nil, fmt.Errorf("locale %s: %w", name, err)
		}

		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		messages := map[string]string{}
		if err := toml.Unmarshal(data, &messages); err != nil {
			return nil, nil, fmt.Errorf("parse locale %s: %w", name, err)
		}

		catalogs[tag.String()] = messages
		if tag != language.English {
			tags = append(tags, tag)
		}
	}

	if _, ok := catalogs[language.English.String()]; !ok {
		return nil, nil, fmt.Errorf("embedded locales missing en.toml")
	}
	return catalogs, tags, nil
}
