package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"RatioChart/internal/model"
)

// Prefs is the last symbol pair the user charted.
type Prefs struct {
	SymbolA   string           `json:"symbol_a"`
	SymbolB   string           `json:"symbol_b"`
	Order     model.RatioOrder `json:"order"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// LoadPrefs reads prefs from a JSON file. Returns zero prefs if the file doesn't exist.
func LoadPrefs(filePath string) (*Prefs, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Prefs{}, nil
		}
		return nil, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePrefs writes prefs to a JSON file, creating the directory if needed.
func SavePrefs(filePath string, p *Prefs) error {
	p.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
