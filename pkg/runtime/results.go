package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResultsDocument is the on-disk shape of a completed conversation: the flat
// value map plus the full audit trail. Written by the CLI, consumed by the
// results browser.
type ResultsDocument struct {
	Values  map[string]any `yaml:"values"  json:"values"`
	Results []Result       `yaml:"results" json:"results"`
}

// WriteResultsFile marshals a results document to YAML or JSON, chosen by
// the target file extension.
func WriteResultsFile(path string, doc *ResultsDocument) error {
	var data []byte
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// LoadResultsFile reads a results document (JSON parses as YAML).
func LoadResultsFile(path string) (*ResultsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	var doc ResultsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode results file: %w", err)
	}
	return &doc, nil
}
