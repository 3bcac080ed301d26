package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// specFile is the structured form of a spec file. A bare list
// of strings is accepted as well.
type specFile struct {
	Tests []string `json:"tests" yaml:"tests"`
}

// LoadSpecsFromFile reads test specs from path. ".json",
// ".yaml" and ".yml" files hold either a list of specs or an
// object with a "tests" list; any other file holds one spec
// per line, with blank lines and '#' comments ignored.
func LoadSpecsFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read spec file %s: %w", path, err,
		)
	}

	var specs []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		specs, err = parseJSONSpecs(data)
	case ".yaml", ".yml":
		specs, err = parseYAMLSpecs(data)
	default:
		specs, err = parseLineSpecs(data)
	}
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse spec file %s: %w", path, err,
		)
	}
	return specs, nil
}

func parseJSONSpecs(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var f specFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, err
	}
	return f.Tests, nil
}

func parseYAMLSpecs(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []string
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var f specFile
	if err := root.Decode(&f); err != nil {
		return nil, err
	}
	return f.Tests, nil
}

func parseLineSpecs(data []byte) ([]string, error) {
	var specs []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	return specs, scanner.Err()
}
