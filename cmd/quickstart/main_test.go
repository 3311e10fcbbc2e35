package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quickstart/internal/api"
	"quickstart/internal/config"
	"quickstart/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithSchemaText(testsupport.MinimalSchema))
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\ndatabase_path = %q\napi_bind = %q\n\n[schema]\npath = %q\n\n[wizard]\nheader_style = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.DatabasePath,
		cfg.Paths.APIBind,
		cfg.Schema.Path,
		cfg.Wizard.HeaderStyle,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("quickstart %s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.DatabasePath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out = mustRunCLI(t, env, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestRunNewAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	var created api.RunResponse
	out := mustRunCLI(t, env, "--json", "run", "new")
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode run new output %q: %v", out, err)
	}
	if created.RunID == "" || !created.Created {
		t.Fatalf("unexpected run: %+v", created)
	}

	mustRunCLI(t, env, "submit", created.RunID, "tmdb", "apikey=abc")
	requireContains(t, mustRunCLI(t, env, "run", "list"), created.RunID)
}

func TestStepsTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "steps")
	requireContains(t, out, "Plex")
	requireContains(t, out, "Final")

	mustRunCLI(t, env, "submit", "brave-otter", "library_selection", `libraries=[{"name":"Movies","type":"movie"}]`)
	out = mustRunCLI(t, env, "steps", "--run", "brave-otter")
	requireContains(t, out, "mov-movies")
	requireContains(t, out, "yes")
}

func TestSubmitShowFinalize(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "submit", "brave-otter", "plex", "plex_url=http://x", "plex_token=abc", "plex_validated=true")
	requireContains(t, out, "Saved plex for run brave-otter (validated: yes, user entered: yes)")
	requireContains(t, out, "Next: ")

	out = mustRunCLI(t, env, "show", "brave-otter", "plex", "--form")
	requireContains(t, out, "plex_url=http://x")
	requireContains(t, out, "Stored: yes")

	out = mustRunCLI(t, env, "show", "brave-otter")
	requireContains(t, out, "plex")

	target := filepath.Join(t.TempDir(), "out", "config.yml")
	_, stderr, err := runCLI(t, []string{"finalize", "brave-otter", "--out", target, "--strict"}, env.configPath)
	if err == nil {
		t.Fatal("expected --strict to fail while tmdb is missing")
	}
	requireContains(t, stderr, "/tmdb")

	mustRunCLI(t, env, "submit", "brave-otter", "tmdb", "tmdb_apikey=k", "tmdb_validated=true")
	_, stderr, err = runCLI(t, []string{"finalize", "brave-otter", "--out", target, "--strict"}, env.configPath)
	if err != nil {
		t.Fatalf("finalize: %v (stderr: %s)", err, stderr)
	}
	requireContains(t, stderr, "[OK]")

	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	requireContains(t, string(written), "plex:\n  url: http://x\n  token: abc\n")
	requireContains(t, string(written), "tmdb:\n  apikey: k\n")
	if strings.Contains(string(written), "validated") {
		t.Fatalf("expected wizard flags to be stripped, got %q", written)
	}
}

func TestFinalizeHeaderStyleOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "submit", "brave-otter", "plex", "plex_url=http://x", "plex_validated=true")

	out := mustRunCLI(t, env, "finalize", "brave-otter", "--header-style", "divider")
	requireContains(t, out, "#===== Plex ")

	if _, _, err := runCLI(t, []string{"finalize", "brave-otter", "--header-style", "fancy"}, env.configPath); err == nil {
		t.Fatal("expected unknown header style to fail")
	}
}

func TestResetClearsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "submit", "brave-otter", "tmdb", "apikey=abc")

	requireContains(t, mustRunCLI(t, env, "reset", "brave-otter"), "Cleared run brave-otter")
	requireContains(t, mustRunCLI(t, env, "show", "brave-otter"), "No sections stored")
}

func TestSubmitRejectsMalformedField(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"submit", "brave-otter", "plex", "url"}, env.configPath); err == nil {
		t.Fatal("expected error for field without '='")
	}
}

func TestCheckWithoutValidator(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"check", "settings"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail for a section without external validation")
	}
	requireContains(t, out, "[ERROR]")
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "doctor")
	requireContains(t, out, "== Quickstart doctor ==")
	requireContains(t, out, "Config schema:")
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("expected all checks to pass, got %q", out)
	}
}
