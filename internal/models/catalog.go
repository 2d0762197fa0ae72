package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/regions.yaml
var regionsYAML []byte

// Catalog decodes the embedded track. Every call returns a fresh copy, so a
// game may mutate its regions freely.
func Catalog() ([]Region, error) {
	var regions []Region
	if err := yaml.Unmarshal(regionsYAML, &regions); err != nil {
		return nil, fmt.Errorf("failed to parse region catalog: %w", err)
	}
	if err := ValidateCatalog(regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// ValidateCatalog checks the shape of a track.
func ValidateCatalog(regions []Region) error {
	if len(regions) != BoardSize {
		return fmt.Errorf("catalog has %d regions, want %d", len(regions), BoardSize)
	}
	seen := make(map[string]bool, len(regions))
	for i, r := range regions {
		if r.ID == "" {
			return fmt.Errorf("region %d has no id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate region id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Price < 0 || r.Rent < 0 {
			return fmt.Errorf("region %q has negative price or rent", r.ID)
		}
		if r.OwnerID != "" {
			return fmt.Errorf("region %q is owned in the catalog", r.ID)
		}
	}
	return nil
}
