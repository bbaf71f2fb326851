package mealie

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Env var names for target credentials.
const (
	EnvURL   = "MEALIE_URL"
	EnvToken = "MEALIE_TOKEN"
)

// FileConfig is the optional JSON config file shape:
//
//	{"mealie_url": "http://mealie.local:9925", "api_token": "..."}
type FileConfig struct {
	URL   string `json:"mealie_url"`
	Token string `json:"api_token"`
}

// LoadConfigFile reads credentials from a JSON file. A missing file is
// fine and yields an empty config; a file that exists but will not parse
// is an error.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mealie: read config %s: %w", path, err)
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("mealie: parse config %s: %w", path, err)
	}
	return &cfg, nil
}
