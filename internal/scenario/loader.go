// Package scenario loads and validates ScenarioSpec documents from disk
// (spec.md §3 "ScenarioSpec", an ambient concern SPEC_FULL.md §1.1 adds: a
// local YAML/JSON scenario file is how an operator hands the runner a goal).
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/omega-e2e/runner/internal/domain"
)

// Load reads a scenario document from path. YAML is assumed unless the
// file extension is ".json".
func Load(path string) (domain.ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ScenarioSpec{}, fmt.Errorf("scenario: read %q: %w", path, err)
	}

	var spec domain.ScenarioSpec
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &spec); err != nil {
			return domain.ScenarioSpec{}, fmt.Errorf("scenario: parse JSON %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return domain.ScenarioSpec{}, fmt.Errorf("scenario: parse YAML %q: %w", path, err)
		}
	}

	if err := spec.Validate(); err != nil {
		return domain.ScenarioSpec{}, fmt.Errorf("scenario: %q failed validation: %w", path, err)
	}
	return spec, nil
}

// LoadDir loads every *.yaml/*.yml/*.json scenario file in dir, sorted by
// filename, stopping at the first file that fails to parse or validate.
func LoadDir(dir string) ([]domain.ScenarioSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario: read dir %q: %w", dir, err)
	}

	var specs []domain.ScenarioSpec
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		spec, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
