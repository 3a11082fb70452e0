package runinfo

import "testing"

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CI", "GITHUB_ACTIONS", "GITHUB_REPOSITORY", "GITHUB_HEAD_REF",
		"GITHUB_REF_NAME", "GITHUB_SHA", "GITHUB_JOB", "GITHUB_RUN_ID",
		"GITHUB_ACTOR", "GITHUB_SERVER_URL", "GITLAB_CI",
		"DOMGEN_CI", "DOMGEN_CI_PROVIDER", "DOMGEN_CI_RUN_ID",
		"DOMGEN_CI_BRANCH",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvEmpty(t *testing.T) {
	clearCIEnv(t)
	if info := FromEnv(); info != nil {
		t.Fatalf("expected nil outside CI, got %+v", info)
	}
}

func TestFromEnvGitHub(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", "acme/domgen")
	t.Setenv("GITHUB_REF_NAME", "refs/heads/main")
	t.Setenv("GITHUB_RUN_ID", "12345")
	info := FromEnv()
	if info == nil {
		t.Fatalf("expected run info")
	}
	if info.Provider != "github_actions" {
		t.Fatalf("unexpected provider: %s", info.Provider)
	}
	if info.Branch != "main" {
		t.Fatalf("branch not normalized: %s", info.Branch)
	}
	if info.BuildURL != "https://github.com/acme/domgen/actions/runs/12345" {
		t.Fatalf("unexpected build url: %s", info.BuildURL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_RUN_ID", "1")
	t.Setenv("DOMGEN_CI_PROVIDER", "Nightly")
	t.Setenv("DOMGEN_CI_RUN_ID", "batch-77")
	info := FromEnv()
	if info == nil {
		t.Fatalf("expected run info")
	}
	if info.Provider != "nightly" {
		t.Fatalf("override not applied: %s", info.Provider)
	}
	if info.RunID != "batch-77" {
		t.Fatalf("override not applied: %s", info.RunID)
	}
}
