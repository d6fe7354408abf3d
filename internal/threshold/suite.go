package threshold

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type suiteFile struct {
	Thresholds []string `yaml:"thresholds"`
}

// LoadSuite reads a YAML file listing threshold strings:
//
//	thresholds:
//	  - "op_duration:p99 < 5"
//	  - "op_alloc:total < 1048576"
func LoadSuite(path string) ([]Threshold, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold suite: %w", err)
	}

	var suite suiteFile
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse threshold suite %s: %w", path, err)
	}

	return ParseMultiple(suite.Thresholds)
}
