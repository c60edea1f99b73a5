package render

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// phpTemplate produces the same object graph the generator's stock config
// builds at runtime, with the environment lookups already resolved.
var phpTemplate = template.Must(template.New("doctum.conf.php").
	Funcs(template.FuncMap{"php": PHPString}).
	Parse(`<?php
// Generated by doctumcfg. Regenerate instead of editing by hand.

use Doctum\Doctum;
use Symfony\Component\Finder\Finder;

$iterator = Finder::create()
    ->files()
    ->name({{ php .Filter.NamePattern }})
{{- range .Filter.ExcludeDirs }}
    ->exclude({{ php . }})
{{- end }}
    ->in([
{{- range .Filter.Roots }}
        {{ php . }},
{{- end }}
    ]);

return new Doctum($iterator, [
    'theme'     => {{ php .Theme }},
    'title'     => {{ php .Title }},
    'build_dir' => {{ php .BuildDir }},
    'cache_dir' => {{ php .CacheDir }},
]);
`))

// PHP writes cfg as a Doctum PHP configuration file.
func PHP(w io.Writer, cfg *model.Configuration) error {
	if err := phpTemplate.Execute(w, cfg); err != nil {
		return fmt.Errorf("failed to render PHP config: %w", err)
	}
	return nil
}

// PHPString quotes s as a PHP single-quoted string literal. Inside single
// quotes PHP only interprets \\ and \', so those are the only escapes.
func PHPString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
