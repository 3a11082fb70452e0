// Package runinfo collects CI/run metadata attached to export summaries.
package runinfo

import (
	"os"
	"strings"
)

// BasicInfo captures CI/run metadata for logs and export summaries.
type BasicInfo struct {
	CI         bool   `json:"ci,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Repository string `json:"repository,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Job        string `json:"job,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	Actor      string `json:"actor,omitempty"`
	BuildURL   string `json:"build_url,omitempty"`
}

// FromEnv builds run metadata from environment variables. Explicit
// DOMGEN_CI_* values take precedence over provider defaults. Returns nil
// when no metadata is present at all.
func FromEnv() *BasicInfo {
	info := detect()
	applyOverrides(&info)
	info.Branch = strings.TrimPrefix(strings.TrimPrefix(info.Branch, "refs/heads/"), "origin/")
	if !info.CI && (info.Provider != "" || info.RunID != "" || info.Commit != "") {
		info.CI = true
	}
	if info.CI && info.Provider == "" {
		info.Provider = "generic"
	}
	if info == (BasicInfo{}) {
		return nil
	}
	return &info
}

func detect() BasicInfo {
	info := BasicInfo{}
	if isTruthy(env("GITHUB_ACTIONS")) {
		info.CI = true
		info.Provider = "github_actions"
		info.Repository = env("GITHUB_REPOSITORY")
		info.Branch = envFirst("GITHUB_HEAD_REF", "GITHUB_REF_NAME")
		info.Commit = env("GITHUB_SHA")
		info.Job = env("GITHUB_JOB")
		info.RunID = env("GITHUB_RUN_ID")
		info.Actor = env("GITHUB_ACTOR")
		if info.Repository != "" && info.RunID != "" {
			server := env("GITHUB_SERVER_URL")
			if server == "" {
				server = "https://github.com"
			}
			info.BuildURL = strings.TrimRight(server, "/") + "/" + info.Repository + "/actions/runs/" + info.RunID
		}
		return info
	}
	if isTruthy(env("GITLAB_CI")) {
		info.CI = true
		info.Provider = "gitlab_ci"
		info.Repository = env("CI_PROJECT_PATH")
		info.Branch = env("CI_COMMIT_REF_NAME")
		info.Commit = env("CI_COMMIT_SHA")
		info.Job = env("CI_JOB_NAME")
		info.RunID = env("CI_PIPELINE_ID")
		info.Actor = env("GITLAB_USER_LOGIN")
		info.BuildURL = env("CI_JOB_URL")
		return info
	}
	if isTruthy(env("CI")) {
		info.CI = true
	}
	return info
}

func applyOverrides(info *BasicInfo) {
	if v := env("DOMGEN_CI"); v != "" {
		info.CI = isTruthy(v)
	}
	setFromEnv(&info.Provider, "DOMGEN_CI_PROVIDER")
	setFromEnv(&info.Repository, "DOMGEN_CI_REPOSITORY")
	setFromEnv(&info.Branch, "DOMGEN_CI_BRANCH")
	setFromEnv(&info.Commit, "DOMGEN_CI_COMMIT")
	setFromEnv(&info.Job, "DOMGEN_CI_JOB")
	setFromEnv(&info.RunID, "DOMGEN_CI_RUN_ID")
	setFromEnv(&info.Actor, "DOMGEN_CI_ACTOR")
	setFromEnv(&info.BuildURL, "DOMGEN_CI_BUILD_URL")
	info.Provider = strings.ToLower(strings.TrimSpace(info.Provider))
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if value := env(key); value != "" {
			return value
		}
	}
	return ""
}

func setFromEnv(dst *string, key string) {
	if value := env(key); value != "" {
		*dst = value
	}
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
