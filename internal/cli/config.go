package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/strataviz/alluvial/pkg/errors"
)

// fileConfig mirrors the optional TOML configuration file accepted by the
// render and serve commands via --config. Flags given on the command line
// win over file values.
//
// Example:
//
//	[data]
//	id = "student"
//	key = "semester"
//	value = "curriculum"
//	weight = "count"
//
//	[layout]
//	guidance = "leftright"
//	aggregate = true
//
//	[render]
//	width = 1024
//	height = 768
//	labels = true
type fileConfig struct {
	Data struct {
		Key    string   `toml:"key"`
		Value  string   `toml:"value"`
		ID     string   `toml:"id"`
		Weight string   `toml:"weight"`
		Axes   []string `toml:"axes"`
		Keep   []string `toml:"keep"`
		NADrop bool     `toml:"na_drop"`
	} `toml:"data"`

	Layout struct {
		Guidance   string   `toml:"guidance"`
		Aes        []string `toml:"aes"`
		AesBind    bool     `toml:"aes_bind"`
		Order      string   `toml:"stratum_order"`
		Aggregate  bool     `toml:"aggregate"`
		Decreasing *bool    `toml:"decreasing"`
	} `toml:"layout"`

	Render struct {
		Width    float64 `toml:"width"`
		Height   float64 `toml:"height"`
		Labels   bool    `toml:"labels"`
		Detailed bool    `toml:"detailed"`
	} `toml:"render"`
}

// loadConfig reads and parses a TOML configuration file.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return &cfg, nil
}
