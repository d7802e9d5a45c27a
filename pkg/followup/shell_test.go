package followup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShellRunnerNoneDisables(t *testing.T) {
	r, err := NewShellRunner(ScriptsNone, t.TempDir())
	require.NoError(t, err)
	assert.False(t, r.Applies(Finding{}))
}

func TestNewShellRunnerDefaultHasEmbeddedScript(t *testing.T) {
	r, err := NewShellRunner(ScriptsDefault, t.TempDir())
	require.NoError(t, err)
	require.Len(t, r.Scripts, 1)
	assert.Equal(t, defaultScriptCallFormat, r.Scripts[0].CallFormat)
	assert.True(t, r.Applies(Finding{Host: "127.0.0.1", Port: 80}))
}

func TestFillTemplateSubstitutesPlaceholders(t *testing.T) {
	out := fillTemplate("nmap -p {{port}} -{{ipversion}} {{ip}}", map[string]string{
		"ip":        "127.0.0.1",
		"port":      "80",
		"ipversion": "4",
	}, ",")
	assert.Equal(t, "nmap -p 80 -4 127.0.0.1", out)
}

func TestTagsSubsetOf(t *testing.T) {
	allowed := map[string]struct{}{"core_approved": {}, "example": {}}
	assert.True(t, tagsSubsetOf([]string{"core_approved"}, allowed))
	assert.False(t, tagsSubsetOf([]string{"core_approved", "unlisted"}, allowed))
	assert.False(t, tagsSubsetOf(nil, allowed))
}

func TestParseScriptFileReadsHeaderBlock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures assume a posix shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "test_script.sh")
	content := "#!/bin/bash\n# tags = [\"core_approved\", \"example\"]\n# call_format = \"echo {{ip}} {{port}}\"\necho \"$1\" \"$2\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))

	def, ok := parseScriptFile(path)
	require.True(t, ok)
	assert.Equal(t, []string{"core_approved", "example"}, def.Tags)
	assert.Equal(t, `echo {{ip}} {{port}}`, def.CallFormat)
}

func TestShellRunnerRunExecutesCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := &ShellRunner{
		Mode: ScriptsDefault,
		Scripts: []ScriptDefinition{{
			CallFormat: "echo {{ip}}-{{port}}",
		}},
	}
	out, err := r.Run(context.Background(), Finding{Host: "127.0.0.1", Port: 80})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1-80", out)
}
