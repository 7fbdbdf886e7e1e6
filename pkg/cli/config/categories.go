package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Categories []Category `toml:"category"`
}

// Category represents a timeline event category configuration
type Category struct {
	ID       string   `toml:"id"`
	Name     string   `toml:"name"`
	Icon     string   `toml:"icon"`
	Template string   `toml:"template"`
	Groups   []string `toml:"groups"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	id := types.CategoryID(c.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category ID")
	}
	if c.Name == "" {
		return goerr.New("category name is required", goerr.V("id", c.ID))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	categoryIDs := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		categoryIDs[cat.ID] = true
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// ToDomainCategories converts the configured categories to domain models
func (a *AppConfig) ToDomainCategories() []*model.Category {
	categories := make([]*model.Category, len(a.Categories))
	for i, cat := range a.Categories {
		categories[i] = &model.Category{
			ID:       types.CategoryID(cat.ID),
			Name:     cat.Name,
			Icon:     cat.Icon,
			Template: cat.Template,
			Groups:   cat.Groups,
		}
	}
	return categories
}
