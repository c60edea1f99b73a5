package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipOnWindows skips tests whose expectations use Unix path syntax.
func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Unix path expectations")
	}
}

// TestBuild_Defaults verifies that every field falls back to its documented
// default when the environment is empty.
func TestBuild_Defaults(t *testing.T) {
	skipOnWindows(t)

	cfg := Build(MapEnvironment{}, "/home/u/proj")

	assert.Equal(t, []string{"src", "packages/*"}, cfg.SourceRoots)
	assert.Equal(t, "/home/u/proj/docs/build/html/api", cfg.BuildDir)
	assert.Equal(t, "/home/u/proj/docs/cache/html/api", cfg.CacheDir)
	assert.Equal(t, "API Documentation", cfg.Title)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, "/etc/doctum/doctum.conf.php", cfg.ConfigPath)
	assert.Equal(t, []string{"-v", "--force"}, cfg.Flags)
	assert.Equal(t, 8001, cfg.ServerPort)
	assert.Equal(t, "/code", cfg.CodeDir)
	assert.Equal(t, "korowai/doctum:latest", cfg.Image)
	assert.Empty(t, cfg.Warnings)
}

// TestBuild_EmptyTreatedAsUnset checks the falsy-default policy: a variable
// set to the empty string behaves exactly like an unset one.
func TestBuild_EmptyTreatedAsUnset(t *testing.T) {
	skipOnWindows(t)

	env := MapEnvironment{
		EnvSourceDir:    "",
		EnvBuildDir:     "",
		EnvCacheDir:     "",
		EnvProjectTitle: "",
		EnvTheme:        "",
	}
	assert.Equal(t, Build(MapEnvironment{}, "/p"), Build(env, "/p"))
}

// TestBuild_Overrides verifies that non-empty variables are used verbatim.
func TestBuild_Overrides(t *testing.T) {
	skipOnWindows(t)

	env := MapEnvironment{
		EnvSourceDir:    "src:vendor/lib",
		EnvBuildDir:     "/tmp/api",
		EnvCacheDir:     "cache",
		EnvProjectTitle: "Acme SDK",
		EnvTheme:        "dark",
		EnvFlags:        "--force",
		EnvServerPort:   "9000",
	}

	cfg := Build(env, "/home/u/proj")

	assert.Equal(t, []string{"src", "vendor/lib"}, cfg.SourceRoots)
	assert.Equal(t, "/tmp/api", cfg.BuildDir)
	assert.Equal(t, "/home/u/proj/cache", cfg.CacheDir)
	assert.Equal(t, "Acme SDK", cfg.Title)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, []string{"--force"}, cfg.Flags)
	assert.Equal(t, 9000, cfg.ServerPort)
}

// TestBuild_FilterIsFixed checks that the discovery filter always matches
// *.php and excludes the same four subtrees, whatever the input.
func TestBuild_FilterIsFixed(t *testing.T) {
	envs := []MapEnvironment{
		{},
		{EnvSourceDir: "lib"},
		{EnvSourceDir: "a:b:c", EnvTheme: "vendor"},
	}

	for _, env := range envs {
		cfg := Build(env, "/p")
		assert.Equal(t, "*.php", cfg.Filter.NamePattern)
		assert.Equal(t, []string{"tests", "resources", "behat", "vendor"}, cfg.Filter.ExcludeDirs)
		assert.True(t, cfg.Filter.Recursive)
		assert.Equal(t, cfg.SourceRoots, cfg.Filter.Roots)
	}
}

// TestBuild_Idempotent verifies that two builds from the same inputs are
// deeply equal and do not share slices.
func TestBuild_Idempotent(t *testing.T) {
	env := MapEnvironment{EnvSourceDir: "src:lib"}

	a := Build(env, "/p")
	b := Build(env, "/p")
	require.Equal(t, a, b)

	a.Filter.ExcludeDirs[0] = "changed"
	a.Filter.Roots[0] = "changed"
	assert.Equal(t, "tests", b.Filter.ExcludeDirs[0])
	assert.Equal(t, "src", b.Filter.Roots[0])
	assert.Equal(t, "src", a.SourceRoots[0], "filter roots must not alias SourceRoots")
}

// TestBuild_InvalidPortFallsBack verifies that a bad server port produces a
// warning and the default port rather than a failure.
func TestBuild_InvalidPortFallsBack(t *testing.T) {
	tests := []string{"http", "0", "70000"}

	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			cfg := Build(MapEnvironment{EnvServerPort: v}, "/p")
			assert.Equal(t, 8001, cfg.ServerPort)
			require.Len(t, cfg.Warnings, 1)
			assert.Contains(t, cfg.Warnings[0], EnvServerPort)
		})
	}
}

// TestBuildWithDefaults checks that caller defaults replace built-ins but
// still lose to non-empty environment values.
func TestBuildWithDefaults(t *testing.T) {
	defaults := Defaults{
		EnvProjectTitle: "From Settings",
		EnvTheme:        "settings-theme",
		EnvBuildDir:     "",
	}
	env := MapEnvironment{EnvTheme: "env-theme"}

	cfg := BuildWithDefaults(env, "/p", defaults)

	assert.Equal(t, "From Settings", cfg.Title)
	assert.Equal(t, "env-theme", cfg.Theme)
	assert.Equal(t, ResolveDir(DefaultBuildDir, "/p"), cfg.BuildDir, "empty default keeps the built-in")
}

// TestResolveDir covers both the relative and the absolute case.
func TestResolveDir(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		dir, cwd, expected string
	}{
		{"out/api", "/home/u/proj", "/home/u/proj/out/api"},
		{"/tmp/api", "/home/u/proj", "/tmp/api"},
		{"./out", "/p", "/p/./out"},
		{"../shared", "/p", "/p/../shared"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got := ResolveDir(tt.dir, tt.cwd)
			assert.Equal(t, tt.expected, got)
			assert.True(t, filepath.IsAbs(got))
		})
	}
}

// TestSplitSourceDirs verifies ":" splitting keeps order and empty entries.
func TestSplitSourceDirs(t *testing.T) {
	assert.Equal(t, []string{"src"}, SplitSourceDirs("src"))
	assert.Equal(t, []string{"src", "vendor/lib"}, SplitSourceDirs("src:vendor/lib"))
	assert.Equal(t, []string{"a", "", "b"}, SplitSourceDirs("a::b"))
}

// TestFromProcess uses the real environment and working directory.
func TestFromProcess(t *testing.T) {
	t.Setenv(EnvProjectTitle, "Process Title")
	t.Setenv(EnvBuildDir, "")

	cfg, err := FromProcess(nil)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, "Process Title", cfg.Title)
	assert.Equal(t, ResolveDir(DefaultBuildDir, cwd), cfg.BuildDir)
}

// TestProcessEnvironment checks that values containing "=" survive.
func TestProcessEnvironment(t *testing.T) {
	t.Setenv("DOCTUM_TEST_VALUE", "a=b=c")

	env := ProcessEnvironment()
	assert.Equal(t, "a=b=c", env.Get("DOCTUM_TEST_VALUE"))
	assert.Equal(t, "", env.Get("DOCTUM_TEST_DOES_NOT_EXIST"))
}

// TestBuild_SourceRegex verifies the rebuild pattern follows the same
// falsy-default policy as the other settings.
func TestBuild_SourceRegex(t *testing.T) {
	cfg := Build(MapEnvironment{}, "/p")
	assert.Equal(t, `\.\(php\|txt\|rst\)$`, cfg.SourceRegex)

	cfg = Build(MapEnvironment{EnvSourceRegex: `\.php$`}, "/p")
	assert.Equal(t, `\.php$`, cfg.SourceRegex)

	assert.Contains(t, Variables(), EnvSourceRegex)
}

// TestVariables verifies every listed variable has a built-in default.
func TestVariables(t *testing.T) {
	defaults := BuiltinDefaults()
	vars := Variables()
	require.Len(t, vars, len(defaults))
	for _, name := range vars {
		assert.NotEmpty(t, defaults[name], name)
	}
}
