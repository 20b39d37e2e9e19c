package recommendation

import (
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("recommendation", map[string]interface{}{
		"candidate_limit": 50,
		"weights":         map[string]interface{}{"nutrition": 0.5},
		"terms":           map[string]interface{}{"gluten_free": []string{"bread", "pasta", "wheat", "barley"}},
	})

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CandidateLimit != 50 {
		t.Errorf("candidate limit = %d, want 50", cfg.CandidateLimit)
	}
	if cfg.Weights.Nutrition != 0.5 || cfg.Weights.Preference != 0.3 {
		t.Errorf("weights = %+v", cfg.Weights)
	}
	if len(cfg.Terms.GlutenFree) != 4 || len(cfg.Terms.Vegetarian) != 4 {
		t.Errorf("terms = %+v", cfg.Terms)
	}
	if cfg.MinCandidates != 10 || cfg.MaxCount != 20 {
		t.Errorf("untouched defaults changed: %+v", cfg)
	}
}

func TestLoadConfigReplacesTermLists(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("recommendation", map[string]interface{}{
		"terms":       map[string]interface{}{"vegetarian": []string{"tofu"}},
		"convenience": map[string]interface{}{"processed_terms": []string{"canned"}},
	})

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Terms.Vegetarian, []string{"tofu"}) {
		t.Errorf("vegetarian = %v, want [tofu]", cfg.Terms.Vegetarian)
	}
	if !reflect.DeepEqual(cfg.Convenience.ProcessedTerms, []string{"canned"}) {
		t.Errorf("processed terms = %v, want [canned]", cfg.Convenience.ProcessedTerms)
	}
	if len(cfg.Terms.Vegan) != 8 || len(cfg.Convenience.NaturalTerms) != 3 {
		t.Errorf("lists without overrides changed: %+v %+v", cfg.Terms, cfg.Convenience)
	}

	defaults := DefaultConfig()
	if !reflect.DeepEqual(defaults.Terms.Vegetarian, []string{"chicken", "beef", "pork", "meat"}) {
		t.Errorf("default vegetarian terms changed to %v", defaults.Terms.Vegetarian)
	}
	if defaults.Terms.Vegan[0] != "chicken" {
		t.Errorf("default vegan terms changed to %v", defaults.Terms.Vegan)
	}
}

func TestLoadConfigWithoutSection(t *testing.T) {
	t.Cleanup(viper.Reset)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CandidateLimit != 200 || cfg.DefaultCount != 10 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"candidate limit", func(c *Config) { c.CandidateLimit = 0 }},
		{"default above max", func(c *Config) { c.DefaultCount = 30 }},
		{"diversity factor", func(c *Config) { c.DiversityFactor = 0 }},
		{"workers", func(c *Config) { c.ScoringWorkers = 0 }},
		{"quantity range", func(c *Config) { c.Quantity.MaxGrams = 10 }},
		{"negative weight", func(c *Config) { c.Weights.Variety = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
