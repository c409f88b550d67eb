package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ContentConfig represents the structure of the content.yaml file.
// Resident-facing content that the kitchen and front desk edit by hand.
type ContentConfig struct {
	MealPlan []MealConfig  `yaml:"meal_plan"`
	Events   []EventConfig `yaml:"events"`
}

// MealConfig is one day of the weekly menu.
type MealConfig struct {
	Day  string `yaml:"day"` // English weekday name, e.g. "monday"
	Dish string `yaml:"dish"`
}

// EventConfig is a calendar appointment. Start and End are YYYY-MM-DD days.
type EventConfig struct {
	Title string `yaml:"title"`
	Start string `yaml:"start"`
	End   string `yaml:"end,omitempty"` // Defaults to Start
}

// DefaultContent is shown until a content file is provided.
func DefaultContent() *ContentConfig {
	return &ContentConfig{
		MealPlan: []MealConfig{
			{Day: "monday", Dish: "Nudeln mit Tomatensauce"},
			{Day: "tuesday", Dish: "Hähnchen mit Reis"},
			{Day: "wednesday", Dish: "Gemüsesuppe"},
			{Day: "thursday", Dish: "Fisch mit Kartoffeln"},
			{Day: "friday", Dish: "Pizza"},
			{Day: "saturday", Dish: "Salat mit Brot"},
			{Day: "sunday", Dish: "Braten mit Knödel"},
		},
		Events: []EventConfig{
			{Title: "Arzttermin", Start: "2025-03-23"},
			{Title: "Besuch vom Enkelkind", Start: "2025-03-25"},
			{Title: "Kaffee trinken", Start: "2025-03-30"},
		},
	}
}

// LoadContentFile loads the YAML content file at path.
// Returns the defaults without error if the file doesn't exist.
func LoadContentFile(path string) (*ContentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Content file is optional
			return DefaultContent(), nil
		}
		return nil, err
	}

	var cfg ContentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Sections left out of the file keep their defaults
	defaults := DefaultContent()
	if cfg.MealPlan == nil {
		cfg.MealPlan = defaults.MealPlan
	}
	if cfg.Events == nil {
		cfg.Events = defaults.Events
	}
	for i := range cfg.Events {
		if cfg.Events[i].End == "" {
			cfg.Events[i].End = cfg.Events[i].Start
		}
	}

	return &cfg, nil
}
