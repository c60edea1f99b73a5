package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/doctumcfg/internal/config"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// testConfig builds a configuration from a fixed environment so the tests
// exercise the same shape the CLI renders.
func testConfig(t *testing.T, env config.MapEnvironment) *model.Configuration {
	t.Helper()
	return config.Build(env, "/work")
}

// TestPHP verifies the generated Doctum config against a golden rendering.
func TestPHP(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{
		config.EnvBuildDir: "/srv/api",
		config.EnvCacheDir: "/var/cache/api",
	})

	var buf bytes.Buffer
	require.NoError(t, PHP(&buf, cfg))

	expected := `<?php
// Generated by doctumcfg. Regenerate instead of editing by hand.

use Doctum\Doctum;
use Symfony\Component\Finder\Finder;

$iterator = Finder::create()
    ->files()
    ->name('*.php')
    ->exclude('tests')
    ->exclude('resources')
    ->exclude('behat')
    ->exclude('vendor')
    ->in([
        'src',
        'packages/*',
    ]);

return new Doctum($iterator, [
    'theme'     => 'default',
    'title'     => 'API Documentation',
    'build_dir' => '/srv/api',
    'cache_dir' => '/var/cache/api',
]);
`
	assert.Equal(t, expected, buf.String())
}

// TestPHP_Escaping checks quotes and backslashes in values cannot break out
// of the PHP string literal.
func TestPHP_Escaping(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{
		config.EnvProjectTitle: `Bob's \ SDK`,
	})

	var buf bytes.Buffer
	require.NoError(t, PHP(&buf, cfg))
	assert.Contains(t, buf.String(), `'title'     => 'Bob\'s \\ SDK',`)
}

// TestPHPString covers the escape rules for single-quoted PHP strings.
func TestPHPString(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"plain", `'plain'`},
		{"it's", `'it\'s'`},
		{`C:\docs`, `'C:\\docs'`},
		{"", `''`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, PHPString(tt.in))
		})
	}
}

// TestJSON verifies the consumer key names appear in the JSON output.
func TestJSON(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{})

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, cfg))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "default", out["theme"])
	assert.Equal(t, "API Documentation", out["title"])
	assert.Equal(t, "/work/docs/build/html/api", out["build_dir"])
	assert.Equal(t, "/work/docs/cache/html/api", out["cache_dir"])
	assert.NotContains(t, out, "warnings", "empty warnings are omitted")
}

// TestYAML verifies the YAML document decodes back to the same values.
func TestYAML(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{config.EnvSourceDir: "src:lib"})

	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, cfg))

	var decoded model.Configuration
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *cfg, decoded)
	assert.Contains(t, buf.String(), "build_dir: /work/docs/build/html/api\n")
}

// TestShell verifies the env output lists every variable with resolved
// values, in stable order.
func TestShell(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{config.EnvProjectTitle: "It's docs"})

	var buf bytes.Buffer
	require.NoError(t, Shell(&buf, cfg, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(config.Variables()))
	assert.Equal(t, "TLR_CODE='/code'", lines[0])
	assert.Contains(t, lines, `DOCTUM_PROJECT_TITLE='It'\''s docs'`)
	assert.Contains(t, lines, "DOCTUM_SOURCE_DIR='src:packages/*'")
	assert.Contains(t, lines, "DOCTUM_BUILD_DIR='/work/docs/build/html/api'")
	assert.Contains(t, lines, "DOCTUM_FLAGS='-v --force'")
	assert.Contains(t, lines, "DOCTUM_SERVER_PORT='8001'")
}

// TestShell_Export checks the export prefix.
func TestShell_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Shell(&buf, testConfig(t, config.MapEnvironment{}), true))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.True(t, strings.HasPrefix(line, "export "), line)
	}
}

// TestDefaults verifies DEFAULT_ lines come from the given defaults.
func TestDefaults(t *testing.T) {
	d := config.BuiltinDefaults()
	d[config.EnvTheme] = "acme"

	var buf bytes.Buffer
	require.NoError(t, Defaults(&buf, d))

	out := buf.String()
	assert.Contains(t, out, "DEFAULT_DOCTUM_THEME='acme'\n")
	assert.Contains(t, out, "DEFAULT_DOCTUM_SOURCE_DIR='src:packages/*'\n")
	assert.Contains(t, out, "DEFAULT_DOCTUM_CONFIG='/etc/doctum/doctum.conf.php'\n")
	assert.Contains(t, out, `DEFAULT_DOCTUM_SOURCE_REGEX='\.\(php\|txt\|rst\)$'`+"\n")
}

// TestWrite checks format dispatch and the unsupported-format error.
func TestWrite(t *testing.T) {
	cfg := testConfig(t, config.MapEnvironment{})

	for _, format := range []string{FormatJSON, FormatYAML, FormatPHP, FormatEnv} {
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, format, cfg), format)
		assert.NotEmpty(t, buf.String(), format)
	}

	err := Write(&bytes.Buffer{}, "toml", cfg)
	assert.Error(t, err)
}
