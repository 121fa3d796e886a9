package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	cat, err := Load(Paths{})
	require.NoError(t, err)
	require.Equal(t, Default().Characters, cat.Characters)
	require.Len(t, cat.Areas, 8)
	require.False(t, cat.Areas[7].Lights())
	require.True(t, cat.Areas[0].Lights())
}

func TestLoadAreasFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "areas.yaml")
	content := `
- area: Lobby
  background: lobby
- area: Vault
  background: vault
  blackout_background: vault_dark
  has_lights: false
  evidence:
    - name: Key
      description: Opens the vault.
      image: key.png
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cat, err := Load(Paths{Areas: path})
	require.NoError(t, err)
	require.Len(t, cat.Areas, 2)
	require.Equal(t, "Vault", cat.Areas[1].Name)
	require.Equal(t, "vault_dark", cat.Areas[1].BlackoutBackground)
	require.False(t, cat.Areas[1].Lights())
	require.Equal(t, "Key", cat.Areas[1].Evidence[0].Name)
}

func TestLoadRejectsEmptyAreaList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o600))

	_, err := Load(Paths{Areas: path})
	require.Error(t, err)
}

func TestLookups(t *testing.T) {
	cat := Default()

	name, ok := cat.CharacterName(1)
	require.True(t, ok)
	require.Equal(t, "Shuichi Saihara_HD", name)

	_, ok = cat.CharacterName(-1)
	require.False(t, ok)

	id, ok := cat.CharacterID("Monokuma_HD")
	require.True(t, ok)
	require.Equal(t, 3, id)

	require.True(t, cat.HasMusic("Calm.mp3"))
	require.False(t, cat.HasMusic("==Trial=="))
	require.Equal(t, 4, cat.SongCount())
	require.Equal(t, "==Trial==", cat.MusicList()[0])
}
