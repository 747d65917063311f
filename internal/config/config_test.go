package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultInstallConfig(t *testing.T) {
	cfg := DefaultInstallConfig()
	require.Equal(t, uint64(DefaultRetry), cfg.Retry)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, "github", cfg.Proxy)
	require.Empty(t, cfg.Dir)
}

func TestDefaultHomeDir_EnvOverride(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/custom-ei-home")
	home, err := DefaultHomeDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-ei-home", home)
}

func TestDefaultHomeDir_DefaultsUnderUserHome(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, err := DefaultHomeDir()
	require.NoError(t, err)
	require.True(t, filepath.Base(home) == ".ei")
}

func TestLoadFile_MissingIsNotError(t *testing.T) {
	fc, ok, err := loadFile(filepath.Join(t.TempDir(), "ei_config.json"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, FileConfig{}, fc)
}

func TestLoadFile_ParsesSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	body := `{"proxy":"hk","dir":"/opt/tools","target":"x86_64-unknown-linux-musl","timeout":120,"retry":5,"upx":true,"strip":false}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	fc, ok, err := loadFile(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hk", fc.Proxy)
	require.Equal(t, "/opt/tools", fc.Dir)
	require.Equal(t, "x86_64-unknown-linux-musl", fc.Target)
	require.NotNil(t, fc.Timeout)
	require.Equal(t, uint64(120), *fc.Timeout)
	require.NotNil(t, fc.Retry)
	require.Equal(t, uint64(5), *fc.Retry)
	require.NotNil(t, fc.Upx)
	require.True(t, *fc.Upx)
	require.NotNil(t, fc.Strip)
	require.False(t, *fc.Strip)
}

func TestLoadFile_RejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, _, err := loadFile(path)
	require.Error(t, err)
}

func TestFileConfig_AllFieldsOptional(t *testing.T) {
	var fc FileConfig
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestMerge_FlagsWinOverFile(t *testing.T) {
	cfg := DefaultInstallConfig()
	cfg.Dir = "/from/flag"

	fc := FileConfig{Dir: "/from/file"}
	merged := cfg.Merge(fc)

	require.Equal(t, "/from/flag", merged.Dir)
}

func TestMerge_FileFillsUnsetFields(t *testing.T) {
	cfg := DefaultInstallConfig()

	retry := uint64(7)
	timeout := uint64(90)
	upx := true
	fc := FileConfig{
		Dir:     "/opt/tools",
		Proxy:   "hk",
		Retry:   &retry,
		Timeout: &timeout,
		Upx:     &upx,
	}

	merged := cfg.Merge(fc)
	require.Equal(t, "/opt/tools", merged.Dir)
	require.Equal(t, "hk", merged.Proxy)
	require.Equal(t, uint64(7), merged.Retry)
	require.Equal(t, 90*time.Second, merged.Timeout)
	require.True(t, merged.Upx)
}
