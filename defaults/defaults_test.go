package defaults

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sahib/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := OpenDefaultConfig()
	require.Nil(t, err)

	require.Equal(t, "round43", cfg.String("render.style"))
	require.Equal(t, "auto", cfg.String("render.color"))
	require.Equal(t, "json", cfg.String("codec.format"))
	require.Equal(t, "none", cfg.String("codec.compression"))
	require.True(t, cfg.Bool("codec.key_map"))
	require.False(t, cfg.Bool("diff.ordered"))
	require.Equal(t, "warning", cfg.String("log.level"))
}

func TestValidators(t *testing.T) {
	cfg, err := OpenDefaultConfig()
	require.Nil(t, err)

	require.Nil(t, cfg.SetString("render.style", "ascii32"))
	require.Nil(t, cfg.SetString("render.style", "list"))
	require.NotNil(t, cfg.SetString("render.style", "fancy"))
	require.Equal(t, "list", cfg.String("render.style"))

	require.Nil(t, cfg.SetString("codec.compression", "lz4"))
	require.NotNil(t, cfg.SetString("codec.compression", "zip"))

	require.Nil(t, cfg.SetString("log.level", "debug"))
	require.NotNil(t, cfg.SetString("log.level", "loud"))
}

func TestOpenMigratedConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "arbor-defaults-test")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	cfg, err := OpenDefaultConfig()
	require.Nil(t, err)
	require.Nil(t, cfg.SetString("codec.format", "yaml"))
	require.Nil(t, cfg.SetBool("diff.reduce", true))

	buf := &bytes.Buffer{}
	require.Nil(t, cfg.Save(config.NewYamlEncoder(buf)))

	path := filepath.Join(dir, "arbor.yml")
	require.Nil(t, ioutil.WriteFile(path, buf.Bytes(), 0644))

	loaded, err := OpenConfigOrDefaults(path)
	require.Nil(t, err)
	require.Equal(t, "yaml", loaded.String("codec.format"))
	require.True(t, loaded.Bool("diff.reduce"))
	require.Equal(t, "round43", loaded.String("render.style"))

	// An explicitly given but missing path is an error.
	_, err = OpenConfigOrDefaults(filepath.Join(dir, "missing.yml"))
	require.NotNil(t, err)
}
