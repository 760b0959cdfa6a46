package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agriprep/internal/config"
	"agriprep/pkg/contracts/domain"
)

// WriteModelDoc serializes the schema description next to the artifacts.
func WriteModelDoc(outputDir string, doc *domain.ModelDoc) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model doc: %w", err)
	}
	path := filepath.Join(outputDir, config.FileModelDoc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model doc: %w", err)
	}
	return nil
}

// ReadModelDoc loads a previously written schema description.
func ReadModelDoc(outputDir string) (*domain.ModelDoc, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, config.FileModelDoc))
	if err != nil {
		return nil, err
	}
	var doc domain.ModelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model doc: %w", err)
	}
	return &doc, nil
}
