package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`

	LevelsPath string `yaml:"levels_path"`
	Level      string `yaml:"level"` // slug or id of the level to seed items from

	// Per-connection outbound queue; oldest messages drop when full.
	OutQueueSize int `yaml:"out_queue_size"`

	DefaultMaxPlayers int        `yaml:"default_max_players"`
	SpawnPosition     [3]float64 `yaml:"spawn_position"`

	DisableDB bool `yaml:"disable_db"`
}

func Defaults() Settings {
	return Settings{
		Addr:              ":8080",
		DataDir:           "./data",
		LevelsPath:        "./configs/levels.yaml",
		OutQueueSize:      64,
		DefaultMaxPlayers: 4,
	}
}

func Load(path string) (Settings, error) {
	s := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	return s, nil
}
