package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Evidence is a piece of evidence presented in an area.
type Evidence struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// Area describes a room as loaded from the areas file. Area ids are the
// position in the list.
type Area struct {
	Name               string     `yaml:"area"`
	Background         string     `yaml:"background"`
	BlackoutBackground string     `yaml:"blackout_background,omitempty"`
	HasLights          *bool      `yaml:"has_lights,omitempty"`
	DefenseHP          int        `yaml:"def_hp,omitempty"`
	ProsecutionHP      int        `yaml:"pro_hp,omitempty"`
	Evidence           []Evidence `yaml:"evidence,omitempty"`
}

// Lights reports whether the area can have its lights toggled.
func (a Area) Lights() bool {
	return a.HasLights == nil || *a.HasLights
}

// MusicCategory groups tracks under a heading, as shown in the client jukebox.
type MusicCategory struct {
	Category string   `yaml:"category"`
	Songs    []string `yaml:"songs"`
}

// Catalog is the static content the server hands out during the handshake.
type Catalog struct {
	Characters []string
	Music      []MusicCategory
	Areas      []Area
}

// CharacterName returns the folder name for a character id.
func (c *Catalog) CharacterName(id int) (string, bool) {
	if id < 0 || id >= len(c.Characters) {
		return "", false
	}
	return c.Characters[id], true
}

// CharacterID looks a character up by its folder name.
func (c *Catalog) CharacterID(name string) (int, bool) {
	for i, ch := range c.Characters {
		if ch == name {
			return i, true
		}
	}
	return 0, false
}

// HasMusic reports whether track is a known song.
func (c *Catalog) HasMusic(track string) bool {
	for _, cat := range c.Music {
		for _, s := range cat.Songs {
			if s == track {
				return true
			}
		}
	}
	return false
}

// MusicList flattens categories and songs in jukebox order.
func (c *Catalog) MusicList() []string {
	out := make([]string, 0, len(c.Music)*4)
	for _, cat := range c.Music {
		out = append(out, cat.Category)
		out = append(out, cat.Songs...)
	}
	return out
}

// SongCount counts tracks, excluding category headings.
func (c *Catalog) SongCount() int {
	n := 0
	for _, cat := range c.Music {
		n += len(cat.Songs)
	}
	return n
}

// Paths points at the optional catalog files. Empty paths fall back to the
// built-in defaults.
type Paths struct {
	Characters string
	Music      string
	Areas      string
}

// Load reads every catalog file named in paths.
func Load(paths Paths) (*Catalog, error) {
	def := Default()
	cat := &Catalog{}

	if err := loadFile(paths.Characters, &cat.Characters); err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	if err := loadFile(paths.Music, &cat.Music); err != nil {
		return nil, fmt.Errorf("load music: %w", err)
	}
	if err := loadFile(paths.Areas, &cat.Areas); err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}

	if paths.Characters == "" {
		cat.Characters = def.Characters
	}
	if paths.Music == "" {
		cat.Music = def.Music
	}
	if paths.Areas == "" {
		cat.Areas = def.Areas
	}

	if len(cat.Areas) == 0 {
		return nil, errors.New("catalog has no areas")
	}
	return cat, nil
}

func loadFile(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
