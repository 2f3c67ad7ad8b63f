package levels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is static reference data: interactive world items are created from
// it once at load time, then mutated only through the session.
type Level struct {
	ID    string `yaml:"id"`
	Slug  string `yaml:"slug"`
	Name  string `yaml:"name"`
	Items []Item `yaml:"items"`
}

type Item struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"` // "chest", "door", ...
	Position [3]float64     `yaml:"position"`
	Rotation *[3]float64    `yaml:"rotation,omitempty"`
	State    map[string]any `yaml:"state"`
}

type File struct {
	Levels []Level `yaml:"levels"`
}

func Load(path string) ([]Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("levels.yaml: %w", err)
	}
	if err := validate(f.Levels); err != nil {
		return nil, err
	}
	return f.Levels, nil
}

func validate(lvls []Level) error {
	seenLevel := map[string]struct{}{}
	seenItem := map[string]struct{}{}
	for _, lvl := range lvls {
		if lvl.ID == "" {
			return fmt.Errorf("level with empty id")
		}
		if _, ok := seenLevel[lvl.ID]; ok {
			return fmt.Errorf("duplicate level id: %s", lvl.ID)
		}
		seenLevel[lvl.ID] = struct{}{}
		for _, it := range lvl.Items {
			if it.ID == "" {
				return fmt.Errorf("level %s: item with empty id", lvl.ID)
			}
			// Item identity is globally unique per running session.
			if _, ok := seenItem[it.ID]; ok {
				return fmt.Errorf("duplicate item id: %s", it.ID)
			}
			seenItem[it.ID] = struct{}{}
			if it.Type == "" {
				return fmt.Errorf("item %s: empty type", it.ID)
			}
		}
	}
	return nil
}

// Find returns the level with the given slug or id.
func Find(lvls []Level, key string) (Level, bool) {
	for _, lvl := range lvls {
		if lvl.Slug == key || lvl.ID == key {
			return lvl, true
		}
	}
	return Level{}, false
}
