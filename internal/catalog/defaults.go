package catalog

// Default returns the built-in catalog used when no files are configured.
func Default() *Catalog {
	return &Catalog{
		Characters: []string{
			"Kaede Akamatsu_HD",
			"Shuichi Saihara_HD",
			"Maki Harukawa_HD",
			"Monokuma_HD",
		},
		Music: []MusicCategory{
			{Category: "==Trial==", Songs: []string{"Trial.mp3", "Argument.mp3"}},
			{Category: "==Investigation==", Songs: []string{"Investigation.mp3", "Calm.mp3"}},
		},
		Areas: []Area{
			{Name: "Basement", Background: "default"},
			{Name: "Courtroom Lobby", Background: "lobby"},
			{Name: "Courtroom", Background: "courtroom", Evidence: []Evidence{
				{Name: "Monokuma File", Description: "Autopsy report.", Image: "file.png"},
			}},
			{Name: "Hallway", Background: "hallway"},
			{Name: "Class A", Background: "classroom"},
			{Name: "Class B", Background: "classroom"},
			{Name: "Dining Hall", Background: "dining"},
			{Name: "Courtyard", Background: "courtyard", HasLights: boolPtr(false)},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
