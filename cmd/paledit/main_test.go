package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/paledit/paledit/internal/config"
	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/persist"
	"github.com/paledit/paledit/internal/world/worldtest"
)

var (
	playerUID = worldtest.GUID(0xA0, 1)
	playerIID = worldtest.GUID(0xB0, 1)
	sheepID   = worldtest.GUID(0x10, 1)
)

func writeCompressed(t *testing.T, path string, doc *gvas.Document, rounds int) []byte {
	t.Helper()
	inner, err := doc.Encode()
	require.NoError(t, err)
	raw, err := gvas.Compress(inner, gvas.Container{Rounds: rounds, ChunkMagic: 0x325A6C50})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return raw
}

// fixtureDir writes Level.sav plus one player save and returns a config
// pointing at them.
func fixtureDir(t *testing.T) (*config.Config, []byte) {
	t.Helper()
	dir := t.TempDir()
	b := worldtest.New()
	b.AddPlayer(playerUID, playerIID, "Tester", 1)
	b.AddPal(sheepID, playerUID, "SheepBall", 1)
	level := writeCompressed(t, filepath.Join(dir, levelFile), b.Document(), 2)

	playerDoc := &gvas.Document{
		Header:     b.Document().Header,
		Properties: worldtest.PlayerSave(playerUID, playerIID, worldtest.GUID(0xC0, 1), worldtest.GUID(0xC0, 2)),
	}
	writeCompressed(t, filepath.Join(dir, "Players", playerUID.String()+".sav"), playerDoc, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Players", "notes.txt"), []byte("x"), 0o644))

	return &config.Config{
		Save:    config.SaveConfig{Dir: dir, PlayerDir: "Players", Backup: true},
		Data:    config.DataConfig{Dir: filepath.Join("..", "..", "data", "yaml")},
		I18n:    config.I18nConfig{Language: "en"},
		Journal: config.JournalConfig{Enabled: true, Path: filepath.Join(dir, "paledit.db")},
	}, level
}

func TestSessionEditAndCommit(t *testing.T) {
	ctx := context.Background()
	cfg, original := fixtureDir(t)
	log := zaptest.NewLogger(t)

	s, err := openSession(ctx, cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 1, s.state.PlayerCount())
	assert.Equal(t, 1, s.state.PalCount())
	assert.Len(t, s.players, 1)
	assert.Equal(t, 2, s.level.save.Container.Rounds)
	require.True(t, s.state.Player(playerUID).HasSaveData())

	s.state.Pal(sheepID).ApplyLevel(10)
	require.NoError(t, s.commit(ctx))
	s.close()

	bak, err := os.ReadFile(filepath.Join(cfg.Save.Dir, levelFile+".bak"))
	require.NoError(t, err)
	assert.Equal(t, original, bak)

	// reopen and check the edit stuck and the journal saw it
	s2, err := openSession(ctx, cfg, log)
	require.NoError(t, err)
	defer s2.close()
	assert.Equal(t, 10, s2.state.Pal(sheepID).Level())
	assert.Equal(t, 2, s2.level.save.Container.Rounds)

	hist, err := s2.journal.History(ctx, event.EntityPal, sheepID.String())
	require.NoError(t, err)
	fields := map[string]bool{}
	for _, c := range hist {
		fields[c.Field] = true
	}
	assert.True(t, fields["Level"])

	last, err := s2.snapshots.LastSave(ctx, filepath.Join(cfg.Save.Dir, levelFile))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, persist.Digest(s2.level.raw), last.Digest)
}

func TestRoundTripCommand(t *testing.T) {
	cfg, _ := fixtureDir(t)
	assert.NoError(t, cmdRoundTrip(cfg, zaptest.NewLogger(t)))
}

func TestOpenSessionWithoutLevel(t *testing.T) {
	cfg, _ := fixtureDir(t)
	cfg.Save.Dir = t.TempDir()
	cfg.Journal.Enabled = false
	_, err := openSession(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestWriteFileWithoutBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sav")
	require.NoError(t, writeFile(path, []byte("old"), []byte("new"), false))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 3, displayWidth("abc"))
	assert.Equal(t, 4, displayWidth("帕魯"))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("PALEDIT_CONFIG", filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, run([]string{"frobnicate", "-dir", t.TempDir()}))
	assert.NoError(t, run([]string{"help"}))
	assert.Error(t, run(nil))
}

func TestParseArgsAcceptsTrailingFlags(t *testing.T) {
	o, err := parseArgs("run", []string{"a.lua", "-dry-run", "b.lua", "-dir", "/saves"})
	require.NoError(t, err)
	assert.True(t, o.dryRun)
	assert.Equal(t, "/saves", o.saveDir)
	assert.Equal(t, []string{"a.lua", "b.lua"}, o.args)

	o, err = parseArgs("run", []string{"-dry-run", "--", "-odd.lua"})
	require.NoError(t, err)
	assert.True(t, o.dryRun)
	assert.Equal(t, []string{"-odd.lua"}, o.args)

	o, err = parseArgs("history", []string{"pal", "abc"})
	require.NoError(t, err)
	assert.False(t, o.dryRun)
	assert.Equal(t, []string{"pal", "abc"}, o.args)

	_, err = parseArgs("run", []string{"a.lua", "-nope"})
	assert.Error(t, err)
}
