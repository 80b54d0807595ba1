package msgcat

import (
    "embed"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "text/template"

    yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

const defaultFile = "messages.en.yaml"

// Catalog holds message templates keyed by dotted path ("store.saved").
// Templates are parsed once at load; executing with missing data is an error.
type Catalog struct {
    mu   sync.RWMutex
    tpls map[string]*template.Template
}

// New loads the embedded messages, then every *.yaml / *.yml file in
// overrideDir (when set). A key defined by two override files is an error.
func New(overrideDir string) (*Catalog, error) {
    c := &Catalog{tpls: make(map[string]*template.Template)}

    raw, err := defaultFiles.ReadFile(defaultFile)
    if err != nil {
        return nil, fmt.Errorf("read embedded messages: %w", err)
    }
    base, err := parseYAMLToFlat(raw)
    if err != nil {
        return nil, fmt.Errorf("parse embedded messages: %w", err)
    }
    if err := c.merge(base); err != nil {
        return nil, err
    }

    if dir := strings.TrimSpace(overrideDir); dir != "" {
        overrides, err := readOverrides(dir)
        if err != nil {
            return nil, err
        }
        if err := c.merge(overrides); err != nil {
            return nil, err
        }
    }
    return c, nil
}

func readOverrides(dir string) (map[string]string, error) {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return nil, fmt.Errorf("read messages dir: %w", err)
    }
    var names []string
    for _, e := range entries {
        ext := strings.ToLower(filepath.Ext(e.Name()))
        if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
            names = append(names, e.Name())
        }
    }
    sort.Strings(names)

    out := make(map[string]string)
    from := make(map[string]string) // key -> file
    for _, name := range names {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil {
            return nil, fmt.Errorf("read %s: %w", name, err)
        }
        flat, err := parseYAMLToFlat(b)
        if err != nil {
            return nil, fmt.Errorf("parse %s: %w", name, err)
        }
        for k, v := range flat {
            if prev, dup := from[k]; dup {
                return nil, fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
            }
            from[k] = name
            out[k] = v
        }
    }
    return out, nil
}

// merge compiles every entry before touching the catalog, so a bad template
// leaves it unchanged.
func (c *Catalog) merge(flat map[string]string) error {
    compiled := make(map[string]*template.Template, len(flat))
    for k, text := range flat {
        if strings.TrimSpace(text) == "" {
            continue
        }
        t, err := template.New(k).Option("missingkey=error").Parse(text)
        if err != nil {
            return fmt.Errorf("message %s: %w", k, err)
        }
        compiled[k] = t
    }
    c.mu.Lock()
    for k, t := range compiled {
        c.tpls[k] = t
    }
    c.mu.Unlock()
    return nil
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
    var root map[string]any
    if err := yaml.Unmarshal(b, &root); err != nil {
        return nil, err
    }
    flat := make(map[string]string)
    if err := flatten(root, "", flat); err != nil {
        return nil, err
    }
    return flat, nil
}

func flatten(node any, prefix string, out map[string]string) error {
    switch v := node.(type) {
    case map[string]any:
        for k, child := range v {
            key := k
            if prefix != "" {
                key = prefix + "." + k
            }
            if err := flatten(child, key, out); err != nil {
                return err
            }
        }
    case string:
        if prefix == "" {
            return errors.New("message without a key")
        }
        out[prefix] = v
    case nil:
    default:
        return fmt.Errorf("message %s: want string, got %T", prefix, v)
    }
    return nil
}

// Render executes the template for key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
    key = strings.TrimSpace(key)
    c.mu.RLock()
    t, ok := c.tpls[key]
    c.mu.RUnlock()
    if !ok {
        return "", fmt.Errorf("message not found: %s", key)
    }
    var b strings.Builder
    if err := t.Execute(&b, data); err != nil {
        return "", err
    }
    return b.String(), nil
}

// Text renders key, falling back to the key itself on error.
func (c *Catalog) Text(key string, data any) string {
    if c == nil {
        return key
    }
    s, err := c.Render(key, data)
    if err != nil {
        return key
    }
    return s
}

// Require fails when any of keys has no message.
func (c *Catalog) Require(keys ...string) error {
    c.mu.RLock()
    defer c.mu.RUnlock()
    var missing []string
    for _, k := range keys {
        if _, ok := c.tpls[k]; !ok {
            missing = append(missing, k)
        }
    }
    if len(missing) > 0 {
        return fmt.Errorf("missing messages: %s", strings.Join(missing, ", "))
    }
    return nil
}

// Keys lists the loaded message keys in sorted order.
func (c *Catalog) Keys() []string {
    c.mu.RLock()
    defer c.mu.RUnlock()
    keys := make([]string, 0, len(c.tpls))
    for k := range c.tpls {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    return keys
}
