package github

import (
	"errors"
	"regexp"
	"strings"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New("owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New("invalid owner format: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New("repo is required")
	}
	if repo == "." || repo == ".." {
		return errors.New("invalid repo name")
	}
	if !validRepo.MatchString(repo) {
		return errors.New("invalid repo format: must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return nil
}

// ParseRepoRef parses an "owner/repo" string and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(ref, "/")
	if !ok {
		return "", "", errors.New("invalid repo format: use owner/repo")
	}
	if err := ValidateOwner(owner); err != nil {
		return "", "", err
	}
	if err := ValidateRepo(repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}

// Target is a parsed event feed reference for the watch command.
type Target struct {
	Space string // "repos", "users" or "orgs"
	Name  string
}

// ParseTarget parses "owner/repo", "user:NAME" or "org:NAME".
func ParseTarget(s string) (Target, error) {
	switch {
	case strings.HasPrefix(s, "user:"):
		name := strings.TrimPrefix(s, "user:")
		return Target{Space: "users", Name: name}, ValidateOwner(name)
	case strings.HasPrefix(s, "org:"):
		name := strings.TrimPrefix(s, "org:")
		return Target{Space: "orgs", Name: name}, ValidateOwner(name)
	default:
		if _, _, err := ParseRepoRef(s); err != nil {
			return Target{}, err
		}
		return Target{Space: "repos", Name: s}, nil
	}
}

// String formats t back into its textual form.
func (t Target) String() string {
	switch t.Space {
	case "users":
		return "user:" + t.Name
	case "orgs":
		return "org:" + t.Name
	default:
		return t.Name
	}
}
