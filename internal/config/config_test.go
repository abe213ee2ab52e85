package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvOnlyDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "gpt-4o-transcribe", cfg.OpenAI.Model)
	assert.Equal(t, ".webm", cfg.Transcribe.DefaultSuffix)
	assert.Equal(t, []string{"/transcrever-audio", "/transcrever"}, cfg.Transcribe.RouteAliases)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "iuris", cfg.RabbitMQ.Exchange)
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadConfig_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
http:
  port: "9000"
openai:
  api_key: from-file
  model: whisper-1
transcribe:
  temp_dir: ` + dir + `
  route_aliases: ["/a", "/b"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("OPENAI_TRANSCRIBE_MODEL", "gpt-4o-mini-transcribe")
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini-transcribe", cfg.OpenAI.Model)
	assert.Equal(t, dir, cfg.Transcribe.TempDir)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Transcribe.RouteAliases)
}

func TestValidate_TempDirMustExist(t *testing.T) {
	var cfg Config
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.Model = "whisper-1"
	cfg.Transcribe.TempDir = filepath.Join(t.TempDir(), "nope")

	assert.Error(t, cfg.Validate())

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	cfg.Transcribe.TempDir = file
	assert.Error(t, cfg.Validate())
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultConfigPath, Path())

	t.Setenv("CONFIG_PATH", "/etc/iuris.yaml")
	assert.Equal(t, "/etc/iuris.yaml", Path())
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	// t.Setenv restores the previous state after the test, including
	// whatever the .env file sets.
	for _, key := range []string{"OPENAI_API_KEY", "LOG_DEBUG"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\nLOG_DEBUG=true\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sk-dotenv", cfg.OpenAI.APIKey)
	assert.True(t, cfg.Log.Debug)
}
