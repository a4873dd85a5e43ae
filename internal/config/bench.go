package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

// Bench configures a batch of autoplay games run by the CLI.
type Bench struct {
	// Games is the number of games played for every entry of Params.
	Games   int `yaml:"games"`
	Workers int `yaml:"workers"`
	// Game i of a batch is played with seed Seed+i.
	Seed   uint64   `yaml:"seed"`
	Params []string `yaml:"params"`
	// Cache is a sqlite file for finished results. Empty disables caching.
	Cache string `yaml:"cache"`
}

func DefaultBench() Bench {
	return Bench{
		Games:   100,
		Workers: runtime.NumCPU(),
		Params:  []string{"beginner"},
	}
}

/*
LoadBench reads a YAML bench file on top of [DefaultBench]. An empty path
returns the defaults.
*/
func LoadBench(path string) (Bench, error) {
	b := DefaultBench()
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("unable to read bench config: %w", err)
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("unable to parse bench config %s: %w", path, err)
	}
	return b, b.Validate()
}

func (b Bench) Validate() error {
	if b.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", b.Games)
	}
	if b.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", b.Workers)
	}
	if len(b.Params) == 0 {
		return fmt.Errorf("no game params listed")
	}
	_, err := b.GameParams()
	return err
}

// GameParams resolves Params, which are preset names or WxH(mines).
func (b Bench) GameParams() ([]minesweeper.GameParams, error) {
	ret := make([]minesweeper.GameParams, 0, len(b.Params))
	for _, s := range b.Params {
		p, err := ParsePreset(s)
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func ParsePreset(s string) (minesweeper.GameParams, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return minesweeper.Beginner, nil
	case "intermediate":
		return minesweeper.Intermediate, nil
	case "expert":
		return minesweeper.Expert, nil
	}
	return minesweeper.ParseGameParams(s)
}
