package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/infra/publish"
)

type Config struct {
	Solver        SolverConfig        `json:"solver"`
	Consolidation ConsolidationConfig `json:"consolidation"`
	Cluster       ClusterConfig       `json:"cluster"`
	Geocode       GeocodeConfig       `json:"geocode"`
	Metrics       metrics.Config      `json:"metrics"`
	Publish       publish.Config      `json:"publish"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FP_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Solver.SetDefaults()
	cfg.Consolidation.SetDefaults()
	cfg.Publish.SetDefaults()
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Consolidation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cluster.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
