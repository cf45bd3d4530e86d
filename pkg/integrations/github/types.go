package github

import "time"

// User represents a GitHub user or organization account.
type User struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Email     string    `json:"email,omitempty"`
	Type      string    `json:"type,omitempty"` // "User", "Organization", "Bot"
	HTMLURL   string    `json:"html_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Organization represents a GitHub organization.
type Organization struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
	PublicRepos int    `json:"public_repos,omitempty"`
}

// Repository represents a GitHub repository.
type Repository struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Owner         *User      `json:"owner,omitempty"`
	Description   string     `json:"description,omitempty"`
	Private       bool       `json:"private"`
	Fork          bool       `json:"fork"`
	Archived      bool       `json:"archived"`
	DefaultBranch string     `json:"default_branch"`
	Language      string     `json:"language,omitempty"`
	Topics        []string   `json:"topics,omitempty"`
	Stars         int        `json:"stargazers_count"`
	Forks         int        `json:"forks_count"`
	OpenIssues    int        `json:"open_issues_count"`
	HTMLURL       string     `json:"html_url,omitempty"`
	PushedAt      *time.Time `json:"pushed_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Release represents a GitHub release.
type Release struct {
	ID          int64      `json:"id"`
	TagName     string     `json:"tag_name"`
	Name        string     `json:"name"`
	Body        string     `json:"body,omitempty"`
	Draft       bool       `json:"draft"`
	Prerelease  bool       `json:"prerelease"`
	HTMLURL     string     `json:"html_url,omitempty"`
	TarballURL  string     `json:"tarball_url,omitempty"`
	ZipballURL  string     `json:"zipball_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Author      *User      `json:"author,omitempty"`
}

// Label is an issue label.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Issue represents an issue or pull request.
type Issue struct {
	ID          int64      `json:"id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	State       string     `json:"state"`
	Locked      bool       `json:"locked"`
	User        *User      `json:"user,omitempty"`
	Labels      []Label    `json:"labels,omitempty"`
	Comments    int        `json:"comments"`
	HTMLURL     string     `json:"html_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether the issue is a pull request.
func (i *Issue) IsPullRequest() bool { return i.PullRequest != nil }

// Actor is the account that triggered an event.
type Actor struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	DisplayLogin string `json:"display_login,omitempty"`
	GravatarID   string `json:"gravatar_id,omitempty"`
	URL          string `json:"url,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// EventRepo identifies the repository an event belongs to.
type EventRepo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // "owner/repo"
	URL  string `json:"url,omitempty"`
}

// Event is one entry of an activity feed. Type is PascalCase, e.g.
// "PushEvent" or "IssuesEvent". Payload depends on Type.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Actor     Actor          `json:"actor"`
	Org       *Actor         `json:"org,omitempty"`
	Repo      EventRepo      `json:"repo"`
	Payload   map[string]any `json:"payload,omitempty"`
	Public    bool           `json:"public"`
	CreatedAt time.Time      `json:"created_at"`
}

// Meta is the reply of GET /meta.
type Meta struct {
	VerifiablePasswordAuthentication bool     `json:"verifiable_password_authentication"`
	Hooks                            []string `json:"hooks,omitempty"`
	Web                              []string `json:"web,omitempty"`
	API                              []string `json:"api,omitempty"`
	Git                              []string `json:"git,omitempty"`
	Pages                            []string `json:"pages,omitempty"`
	Actions                          []string `json:"actions,omitempty"`
	Dependabot                       []string `json:"dependabot,omitempty"`
}

// RateLimitResource is one quota bucket of GET /rate_limit.
type RateLimitResource struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Used      int   `json:"used"`
	Reset     int64 `json:"reset"`
}

// ResetTime converts Reset (unix seconds) to a time.
func (r RateLimitResource) ResetTime() time.Time { return time.Unix(r.Reset, 0).UTC() }

// RateLimitOverview is the reply of GET /rate_limit.
type RateLimitOverview struct {
	Resources map[string]RateLimitResource `json:"resources"`
	Rate      RateLimitResource            `json:"rate"`
}

// DeviceCode is the reply of the device flow registration.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// OAuthToken represents an OAuth access token response.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}
