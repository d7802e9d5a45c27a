package followup

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ScriptMode selects which of the three script behaviours applies, per
// spec.md §5's supplemented "--scripts" flag.
type ScriptMode string

const (
	ScriptsDefault ScriptMode = "default"
	ScriptsNone    ScriptMode = "none"
	ScriptsCustom  ScriptMode = "custom"
)

// defaultScriptCallFormat is the single script embedded in the binary, run when
// --scripts default (the zero value) is selected. Grounded on
// original_source/src/scripts/mod.rs's DEFAULT constant.
const defaultScriptCallFormat = "nmap -vvv -p {{port}} -{{ipversion}} {{ip}}"

// ScriptDefinition mirrors one entry from a user's ~/.farscan_scripts
// directory: a header block of TOML metadata followed by the script body,
// the way original_source's ScriptFile does.
type ScriptDefinition struct {
	Path           string
	Tags           []string `toml:"tags"`
	Developer      []string `toml:"developer"`
	Port           string   `toml:"port"`
	PortsSeparator string   `toml:"ports_separator"`
	CallFormat     string   `toml:"call_format"`
}

// ScriptRunnerConfig is the optional ~/.farscan_scripts.toml selecting
// which tagged scripts to run and where to find them.
type ScriptRunnerConfig struct {
	Tags      []string `toml:"tags"`
	Ports     []string `toml:"ports"`
	Developer []string `toml:"developer"`
	Directory string   `toml:"directory"`
}

// ShellRunner executes an external command once per open finding,
// following the placeholder-substitution and tag-filtering scheme of
// original_source/src/scripts/mod.rs.
type ShellRunner struct {
	Mode    ScriptMode
	Scripts []ScriptDefinition
}

// NewShellRunner resolves mode into a ready ShellRunner. For
// ScriptsCustom it reads home/.farscan_scripts.toml and parses every file
// under home/.farscan_scripts; scripts whose tags aren't a subset of the
// config's tags are dropped, exactly as the original engine does.
func NewShellRunner(mode ScriptMode, homeDir string) (*ShellRunner, error) {
	switch mode {
	case ScriptsNone:
		return &ShellRunner{Mode: mode}, nil
	case "", ScriptsDefault:
		return &ShellRunner{
			Mode: ScriptsDefault,
			Scripts: []ScriptDefinition{{
				CallFormat: defaultScriptCallFormat,
			}},
		}, nil
	case ScriptsCustom:
		return newCustomShellRunner(homeDir)
	default:
		return nil, fmt.Errorf("unknown script mode %q", mode)
	}
}

func newCustomShellRunner(homeDir string) (*ShellRunner, error) {
	cfg, err := readScriptRunnerConfig(filepath.Join(homeDir, ".farscan_scripts.toml"))
	if err != nil {
		return nil, fmt.Errorf("read script config: %w", err)
	}

	dir := cfg.Directory
	if dir == "" {
		dir = filepath.Join(homeDir, ".farscan_scripts")
	}

	paths, err := findScripts(dir)
	if err != nil {
		return nil, fmt.Errorf("find scripts: %w", err)
	}

	var selected []ScriptDefinition
	configTags := make(map[string]struct{}, len(cfg.Tags))
	for _, t := range cfg.Tags {
		configTags[t] = struct{}{}
	}

	for _, p := range paths {
		def, ok := parseScriptFile(p)
		if !ok {
			continue
		}
		if !tagsSubsetOf(def.Tags, configTags) {
			continue
		}
		selected = append(selected, def)
	}

	return &ShellRunner{Mode: ScriptsCustom, Scripts: selected}, nil
}

func readScriptRunnerConfig(path string) (ScriptRunnerConfig, error) {
	var cfg ScriptRunnerConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func findScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// parseScriptFile reads the leading "#"-prefixed comment block of a
// script file as TOML, matching original_source's ScriptFile::new.
func parseScriptFile(path string) (ScriptDefinition, bool) {
	f, err := os.Open(path)
	if err != nil {
		return ScriptDefinition{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var header strings.Builder
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		header.WriteString(strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
		header.WriteString("\n")
	}

	var def ScriptDefinition
	if _, err := toml.Decode(header.String(), &def); err != nil {
		return ScriptDefinition{}, false
	}
	def.Path = path
	return def, true
}

func tagsSubsetOf(tags []string, allowed map[string]struct{}) bool {
	if len(tags) == 0 {
		return false
	}
	for _, t := range tags {
		if _, ok := allowed[t]; !ok {
			return false
		}
	}
	return true
}

func (r *ShellRunner) Name() string { return "shell-script" }

func (r *ShellRunner) Applies(f Finding) bool {
	return r.Mode != ScriptsNone && len(r.Scripts) > 0
}

func (r *ShellRunner) Run(ctx context.Context, f Finding) (string, error) {
	var outputs []string
	for _, def := range r.Scripts {
		out, err := r.runOne(ctx, def, f)
		if err != nil {
			outputs = append(outputs, fmt.Sprintf("%s: %v", def.scriptLabel(), err))
			continue
		}
		outputs = append(outputs, strings.TrimSpace(out))
	}
	return strings.Join(outputs, "\n"), nil
}

func (def ScriptDefinition) scriptLabel() string {
	if def.Path == "" {
		return "default"
	}
	return def.Path
}

func (r *ShellRunner) runOne(ctx context.Context, def ScriptDefinition, f Finding) (string, error) {
	if def.CallFormat == "" {
		return "", fmt.Errorf("script has no call_format")
	}

	separator := def.PortsSeparator
	if separator == "" {
		separator = ","
	}

	portsStr := strconv.Itoa(f.Port)
	if def.Port != "" {
		portsStr = def.Port
	}

	ipVersion := "4"
	if strings.Contains(f.Host, ":") {
		ipVersion = "6"
	}

	cmdLine := fillTemplate(def.CallFormat, map[string]string{
		"script":    def.Path,
		"ip":        f.Host,
		"port":      portsStr,
		"ipversion": ipVersion,
	}, separator)

	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd.exe", "/c"
	}

	cmd := exec.CommandContext(ctx, shell, flag, cmdLine)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run %q: %w", cmdLine, err)
	}
	return string(out), nil
}

// fillTemplate performs the {{placeholder}} substitution original_source
// does through text_placeholder. If call_format references {{script}} but
// def has no path, the placeholder is replaced with an empty string.
func fillTemplate(format string, values map[string]string, separator string) string {
	out := format
	for key, val := range values {
		if key == "port" {
			val = strings.ReplaceAll(val, ",", separator)
		}
		out = strings.ReplaceAll(out, "{{"+key+"}}", val)
	}
	return out
}
