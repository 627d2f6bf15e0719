package scriptstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

var scriptFileExtensions = map[string]struct{}{
	".yaml": {},
	".yml":  {},
	".json": {},
}

// ReadScriptFile parses a YAML or JSON script document.
func ReadScriptFile(path string) (*sigscript.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	script, err := ParseScript(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return script, nil
}

// ParseScript decodes a YAML or JSON script document.
func ParseScript(data []byte) (*sigscript.Script, error) {
	var doc ScriptDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, errors.New("script document without name")
	}

	return doc.Script()
}

// ReadScriptDir parses every script file of dir in file name order.
// Subdirectories are not searched.
func ReadScriptDir(dir string) ([]*sigscript.Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read script directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := scriptFileExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	scripts := make([]*sigscript.Script, 0, len(names))
	for _, name := range names {
		script, err := ReadScriptFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}

	return scripts, nil
}
