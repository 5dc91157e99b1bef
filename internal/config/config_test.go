package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chess50/internal/board"
)

// inTempDir runs the test from an empty directory so no stray
// chess50.yaml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefaults(t *testing.T) {
	inTempDir(t)
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Depth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, RulesBuiltin, cfg.Rules)
	assert.Equal(t, SelfPlay{Games: 4, Workers: 2, MaxPlies: 200}, cfg.SelfPlay)
	assert.Empty(t, cfg.File)

	color, err := cfg.Color()
	require.NoError(t, err)
	assert.Equal(t, board.White, color)

	seed, err := cfg.SeedBytes()
	require.NoError(t, err)
	assert.Nil(t, seed)
}

func TestFileEnvFlagPriority(t *testing.T) {
	dir := inTempDir(t)
	yaml := "depth: 2\nlog_level: debug\nplayer_color: black\nselfplay:\n  games: 10\n  workers: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chess50.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Depth)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "black", cfg.PlayerColor)
	assert.Equal(t, 10, cfg.SelfPlay.Games)
	assert.Equal(t, 3, cfg.SelfPlay.Workers)
	assert.Equal(t, 200, cfg.SelfPlay.MaxPlies)
	assert.True(t, strings.HasSuffix(cfg.File, "chess50.yaml"))

	t.Setenv("CHESS50_DEPTH", "4")
	t.Setenv("CHESS50_SELFPLAY_GAMES", "7")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Depth)
	assert.Equal(t, 7, cfg.SelfPlay.Games)

	cfg, err = Load([]string{"--depth", "5", "--rules", "notnil", "shell"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Depth)
	assert.Equal(t, RulesNotnil, cfg.Rules)
	assert.Equal(t, []string{"shell"}, cfg.Args)
}

func TestExplicitConfigFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("depth: 6\n"), 0o644))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Depth)
	assert.Equal(t, path, cfg.File)

	_, err = Load([]string{"--config", filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	inTempDir(t)

	for _, args := range [][]string{
		{"--depth", "0"},
		{"--color", "green"},
		{"--seed", "abcd"},
		{"--selfplay-workers", "0"},
		{"--rules", "fairy"},
	} {
		_, err := Load(args)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%v", args)
	}

	_, err := Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestSeedBytes(t *testing.T) {
	cfg := &Config{Seed: strings.Repeat("0f", 32)}
	seed, err := cfg.SeedBytes()
	require.NoError(t, err)
	require.Len(t, seed, 32)
	assert.Equal(t, byte(0x0f), seed[31])
}
