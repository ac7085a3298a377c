package config

import (
	"fmt"
	"os"

	"github.com/janduczek/retailsync/pkg/models"
)

// LoadSources reads and parses the sources file from the given path. The
// order of entries in the file is the order files are processed in, which
// keeps run reports reproducible.
func LoadSources(filePath string) (*models.SourcesConfig, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file '%s': %w", filePath, err)
	}

	cfg, err := models.LoadSources(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sources file '%s': %w", filePath, err)
	}

	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("sources file '%s' lists no sources", filePath)
	}
	for i, s := range cfg.Sources {
		if s.SourceID == "" || s.Path == "" {
			return nil, fmt.Errorf("source entry %d is missing sourceId or path", i)
		}
	}

	return cfg, nil
}
