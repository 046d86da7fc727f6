package lang

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrSourceAbsent is returned when a tree file does not exist.
var ErrSourceAbsent = errors.New("tree source absent")

const (
	languageDir = "language"
	callbackDir = "callback"
	filePrefix  = "lang"
)

var extensions = []string{".json", ".yaml", ".yml"}

//go:embed data
var bundled embed.FS

// Source supplies parsed trees.
type Source interface {
	// TextTree returns the text tree for lang or an error wrapping ErrSourceAbsent.
	TextTree(lang string) (*TextTree, error)
	// ActionTree returns the shared action tree or an error wrapping ErrSourceAbsent.
	ActionTree() (*ActionTree, error)
}

// Catalog is an immutable set of loaded trees.
type Catalog struct {
	texts   map[string]*TextTree
	actions *ActionTree
}

// NewCatalog builds a catalog from already parsed trees. A nil action tree is reported as absent.
func NewCatalog(texts map[string]*TextTree, actions *ActionTree) *Catalog {
	copied := make(map[string]*TextTree, len(texts))
	for k, v := range texts {
		copied[strings.ToLower(k)] = v
	}
	return &Catalog{texts: copied, actions: actions}
}

// Bundled returns the filesystem with the sample trees shipped in the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadCatalog reads every language/lang*.{json,yaml,yml} file and callback/callback.* from fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, languageDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", languageDir, err)
	}

	texts := make(map[string]*TextTree)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		code, ok := languageFromFile(entry.Name())
		if !ok {
			continue
		}
		if _, exists := texts[code]; exists {
			continue
		}
		var tree TextTree
		if err := decodeFile(fsys, path.Join(languageDir, entry.Name()), &tree); err != nil {
			return nil, err
		}
		texts[code] = &tree
	}

	var actions *ActionTree
	for _, ext := range extensions {
		var tree ActionTree
		err := decodeFile(fsys, path.Join(callbackDir, "callback"+ext), &tree)
		if errors.Is(err, ErrSourceAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		actions = &tree
		break
	}

	return &Catalog{texts: texts, actions: actions}, nil
}

// Languages returns loaded language codes in sorted order.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.texts))
	for code := range c.texts {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// TextTree implements Source.
func (c *Catalog) TextTree(lang string) (*TextTree, error) {
	tree, ok := c.texts[strings.ToLower(lang)]
	if !ok {
		return nil, fmt.Errorf("text tree %q: %w", lang, ErrSourceAbsent)
	}
	return tree, nil
}

// ActionTree implements Source.
func (c *Catalog) ActionTree() (*ActionTree, error) {
	if c.actions == nil {
		return nil, fmt.Errorf("action tree: %w", ErrSourceAbsent)
	}
	return c.actions, nil
}

func languageFromFile(name string) (string, bool) {
	ext := path.Ext(name)
	known := false
	for _, candidate := range extensions {
		if ext == candidate {
			known = true
			break
		}
	}
	if !known || !strings.HasPrefix(name, filePrefix) {
		return "", false
	}
	code := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ext))
	if code == "" {
		return "", false
	}
	return code, true
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrSourceAbsent)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if path.Ext(name) == ".json" {
		err = decodeJSON(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// decodeJSON parses data as JSON and replays it through a yaml.Node so that
// the tree types see the same nodes as for YAML sources.
func decodeJSON(data []byte, out any) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var node yaml.Node
	if err := node.Encode(doc); err != nil {
		return err
	}
	return node.Decode(out)
}

// Normalize reduces a BCP 47 tag such as "en-US" to its base language.
// Unparseable values are returned lowercased and trimmed.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}
