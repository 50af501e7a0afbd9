package cmd

import (
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/cpehle/aivika/sim"
)

// runConfig is the YAML-loadable subset of flags the queue command accepts,
// mirroring the shape of sim.Specs plus the demo model's own parameters.
// Every non-zero value a --config file sets overrides the matching flag.
type runConfig struct {
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Dt     float64 `yaml:"dt"`
	Method string  `yaml:"method"`

	Seed         int64   `yaml:"seed"`
	ServiceRate  float64 `yaml:"service_rate"`
	ArrivalRate  float64 `yaml:"arrival_rate"`
	ServerCount  int     `yaml:"server_count"`
	ArrivalCount int     `yaml:"arrival_count"`
}

func loadRunConfig(path string) (*runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg runConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func methodFromName(name string) sim.IntegrationMethod {
	switch name {
	case "", "euler":
		return sim.Euler
	case "rk2":
		return sim.RK2
	case "rk4":
		return sim.RK4
	default:
		return sim.Euler
	}
}
