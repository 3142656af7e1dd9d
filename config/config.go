// Package config reads the console configuration file. Flags and environment
// variables layer on top of it in main.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/passage-nav/console/reference"
)

// Defaults seed the session before any deep link or user edit.
type Defaults struct {
	SpeedKts       float64 `yaml:"speed_kts"`
	PiracyWeight   float64 `yaml:"piracy_weight"`
	StormWeight    float64 `yaml:"storm_weight"`
	DepthPenaltyNm float64 `yaml:"depth_penalty_nm"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Service  string            `yaml:"service"`
	MapToken string            `yaml:"map_token"`
	GribFile string            `yaml:"grib_file"`
	Sources  reference.Sources `yaml:"sources"`
	Defaults Defaults          `yaml:"defaults"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
