package main

import (
	"context"
	"strings"
	"testing"

	"github.com/simpool/simpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestBuildOptionsWithConfigFile(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/simpool/cli/sim.yaml"
	data := `capacity: 8
seed: 99
scriptURL: mem://localhost/in/config.txt
textURL: mem://localhost/in/lines.txt
journalBaseURL: mem://localhost/simpool/cli/journals
`
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(data)))

	t.Run("unset flags keep config file values", func(t *testing.T) {
		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--config", URL}))

		options, err := buildOptions(ctx, cmd, fs, []string{"config.txt", "lines.txt", "2"}, 2)
		require.NoError(t, err)
		config := simpool.New(options...).Config()

		assert.Equal(t, int64(99), config.Seed)
		assert.Equal(t, "mem://localhost/simpool/cli/journals", config.JournalBaseURL)
		// positional arguments always override the file
		assert.Equal(t, 2, config.Capacity)
		assert.Equal(t, "config.txt", config.ScriptURL)
		assert.Equal(t, "lines.txt", config.TextURL)
	})

	t.Run("explicit flags override config file values", func(t *testing.T) {
		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--config", URL, "--seed", "5", "--journal-dir", "out"}))

		options, err := buildOptions(ctx, cmd, fs, []string{"config.txt", "lines.txt", "3"}, 3)
		require.NoError(t, err)
		config := simpool.New(options...).Config()

		assert.Equal(t, int64(5), config.Seed)
		assert.Equal(t, "out", config.JournalBaseURL)
		assert.Equal(t, 3, config.Capacity)
	})

	t.Run("no config file uses flag defaults", func(t *testing.T) {
		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags(nil))

		options, err := buildOptions(ctx, cmd, fs, []string{"config.txt", "lines.txt", "4"}, 4)
		require.NoError(t, err)
		config := simpool.New(options...).Config()

		assert.Equal(t, int64(0), config.Seed)
		assert.Equal(t, ".", config.JournalBaseURL)
		assert.Equal(t, 4, config.Capacity)
	})

	t.Run("missing config file errors", func(t *testing.T) {
		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--config", "mem://localhost/simpool/cli/absent.yaml"}))

		_, err := buildOptions(ctx, cmd, fs, []string{"config.txt", "lines.txt", "2"}, 2)
		assert.Error(t, err)
	})
}
