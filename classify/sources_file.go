package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"imagecredit/attribution"
)

// sourcesFile is the shape of the optional YAML file extending the built-in
// registry with custom domains:
//
//	sources:
//	  - key: mystock
//	    domains: ["mystock.example.com"]
//	    expected_fields: ["creator", "title"]
type sourcesFile struct {
	Sources []struct {
		Key            string   `yaml:"key"`
		Domains        []string `yaml:"domains"`
		ExpectedFields []string `yaml:"expected_fields"`
	} `yaml:"sources"`
}

// LoadSources appends sources from the YAML file at path to the registry.
// Custom sources always rank below the built-ins and are scrape-only.
func (r *Registry) LoadSources(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing sources file %s: %w", path, err)
	}

	for _, s := range f.Sources {
		if s.Key == "" || len(s.Domains) == 0 {
			return fmt.Errorf("sources file %s: every source needs a key and at least one domain", path)
		}
		expected := s.ExpectedFields
		if len(expected) == 0 {
			expected = []string{"creator", "title"}
		}
		r.add(attribution.Source{Key: s.Key, ExpectedFields: expected}, s.Domains)
	}
	return nil
}
