// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sentinel

import (
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianSentinel/services/agent"
	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/AleutianAI/AleutianSentinel/services/incident/graph"
	"github.com/AleutianAI/AleutianSentinel/services/news"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServiceConfig aggregates the configuration of every external integration.
//
// Every integration is optional: an unset key or URL selects that
// integration's degraded behavior rather than failing startup. The service
// is designed to produce a structurally valid decision with zero keys
// configured.
type ServiceConfig struct {
	// Tavily is the news search provider configuration.
	Tavily news.TavilyConfig `yaml:"tavily"`

	// Extraction is the Fastino incident-extraction configuration.
	Extraction incident.ExtractionConfig `yaml:"extraction"`

	// Senso is the impact-analysis configuration.
	Senso agent.SensoConfig `yaml:"senso"`

	// Reka is the reasoning-model configuration.
	Reka agent.RekaConfig `yaml:"reka"`

	// Graph is the Weaviate incident-graph sink configuration.
	Graph graph.Config `yaml:"graph"`

	// DecisionAgentURL is the base URL of the externally hosted decision
	// agent, the second rung of the degradation ladder.
	DecisionAgentURL string `yaml:"decision_agent_url" validate:"omitempty,url"`
}

// DefaultServiceConfig returns a configuration with every integration unset.
// With this config the service runs fully degraded: simulated news,
// heuristic extraction, no graph writes, and the mock decision.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{}
}

// LoadServiceConfigFromEnv builds the configuration from environment
// variables, matching the variable names the deployment manifests use.
func LoadServiceConfigFromEnv() ServiceConfig {
	return ServiceConfig{
		Tavily: news.TavilyConfig{
			APIKey: os.Getenv("TAVILY_API_KEY"),
		},
		Extraction: incident.ExtractionConfig{
			URL:    os.Getenv("FASTINO_API_URL"),
			APIKey: os.Getenv("FASTINO_API_KEY"),
		},
		Senso: agent.SensoConfig{
			BaseURL: os.Getenv("SENSO_BASE_URL"),
			APIKey:  os.Getenv("SENSO_API_KEY"),
		},
		Reka: agent.RekaConfig{
			APIKey: os.Getenv("REKA_API_KEY"),
			Model:  os.Getenv("REKA_MODEL"),
		},
		Graph: graph.Config{
			Host:   os.Getenv("WEAVIATE_HOST"),
			Scheme: os.Getenv("WEAVIATE_SCHEME"),
			APIKey: os.Getenv("WEAVIATE_API_KEY"),
		},
		DecisionAgentURL: os.Getenv("DECISION_AGENT_URL"),
	}
}

// LoadServiceConfigFile overlays YAML file values on top of cfg. Fields
// absent from the file keep their current values.
func LoadServiceConfigFile(cfg ServiceConfig, path string) (ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sentinel: reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sentinel: parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks URL-shaped fields. Empty values pass; they select the
// degraded path instead.
func (c ServiceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("sentinel: invalid configuration: %w", err)
	}
	return nil
}
