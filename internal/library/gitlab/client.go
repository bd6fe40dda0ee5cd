// Package gitlab is a minimal paginated REST client for the GitLab v4 API,
// covering only what the knowledge-base refresh pipeline needs.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
)

const (
	treePageSize   = 100
	defaultTimeout = 30 * time.Second
)

var (
	// ErrInvalidToken indicates the configured access token was rejected.
	ErrInvalidToken = errors.New("invalid gitlab access token")
	// ErrProjectNotFound indicates the repository path resolved to no project.
	ErrProjectNotFound = errors.New("gitlab project not found")
)

// Config describes one tenant's repository connection.
type Config struct {
	// RepoURL is the full repository URL, e.g. https://gitlab.com/group/project.
	RepoURL string
	Token   string
	Branch  string
	// Timeout bounds every API call; defaults to 30s.
	Timeout time.Duration
}

// Client talks to one GitLab project. The numeric project id is cached after
// first resolution for the client's lifetime.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	projectPath string
	token       string
	branch      string
	projectID   int
}

// TreeEntry is one node of a repository tree listing.
type TreeEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// NewClient parses the repository URL into an API base and project path.
func NewClient(cfg Config) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(cfg.RepoURL))
	if err != nil {
		return nil, errors.Wrap(err, "parse repository url")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("repository url %q missing scheme or host", cfg.RepoURL)
	}

	projectPath := strings.Trim(strings.TrimSuffix(parsed.Path, ".git"), "/")
	if projectPath == "" {
		return nil, errors.Errorf("repository url %q missing project path", cfg.RepoURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     parsed.Scheme + "://" + parsed.Host,
		projectPath: projectPath,
		token:       cfg.Token,
		branch:      cfg.Branch,
	}, nil
}

// ResolveProject looks up the project by its URL-derived path and caches the
// numeric id.
func (c *Client) ResolveProject(ctx context.Context) (int, error) {
	if c.projectID != 0 {
		return c.projectID, nil
	}

	resp, err := c.get(ctx, "/projects/"+url.PathEscape(c.projectPath), nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return 0, errors.WithStack(ErrInvalidToken)
	case http.StatusNotFound:
		return 0, errors.WithStack(ErrProjectNotFound)
	default:
		return 0, errors.Errorf("gitlab api status %d", resp.StatusCode)
	}

	var project struct {
		ID int `json:"id"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return 0, errors.Wrap(err, "decode project")
	}

	c.projectID = project.ID
	return c.projectID, nil
}

// CurrentCommit resolves the head commit SHA of branch, used purely as a
// provenance stamp.
func (c *Client) CurrentCommit(ctx context.Context, branch string) (string, error) {
	projectID, err := c.ResolveProject(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}

	resp, err := c.get(ctx,
		fmt.Sprintf("/projects/%d/repository/branches/%s", projectID, url.PathEscape(branch)), nil)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("gitlab api status %d", resp.StatusCode)
	}

	var branchInfo struct {
		Commit struct {
			ID string `json:"id"`
		} `json:"commit"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&branchInfo); err != nil {
		return "", errors.Wrap(err, "decode branch")
	}

	return branchInfo.Commit.ID, nil
}

// ListTree lists the repository tree under pathFilter, following the
// X-Total-Pages header until exhausted. A 404 means the path has no files yet
// and yields an empty list, not an error.
func (c *Client) ListTree(ctx context.Context, pathFilter string, recursive bool) ([]TreeEntry, error) {
	projectID, err := c.ResolveProject(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var entries []TreeEntry
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		query := url.Values{
			"ref":       {c.branch},
			"recursive": {strconv.FormatBool(recursive)},
			"per_page":  {strconv.Itoa(treePageSize)},
			"page":      {strconv.Itoa(page)},
		}
		if pathFilter != "" {
			query.Set("path", pathFilter)
		}

		resp, err := c.get(ctx, fmt.Sprintf("/projects/%d/repository/tree", projectID), query)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, nil
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Errorf("gitlab api status %d", resp.StatusCode)
		}

		var pageEntries []TreeEntry
		err = json.NewDecoder(resp.Body).Decode(&pageEntries)
		resp.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "decode tree page")
		}
		entries = append(entries, pageEntries...)

		if header := resp.Header.Get("X-Total-Pages"); header != "" {
			if parsed, err := strconv.Atoi(header); err == nil {
				totalPages = parsed
			}
		}
	}

	return entries, nil
}

// FileContent fetches the raw content of one file at the configured branch ref.
func (c *Client) FileContent(ctx context.Context, filePath string) (string, error) {
	projectID, err := c.ResolveProject(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}

	query := url.Values{"ref": {c.branch}}
	resp, err := c.get(ctx,
		fmt.Sprintf("/projects/%d/repository/files/%s/raw", projectID, url.PathEscape(filePath)), query)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("gitlab api status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read file content")
	}

	return string(content), nil
}

func (c *Client) get(ctx context.Context, apiPath string, query url.Values) (*http.Response, error) {
	endpoint := c.baseURL + "/api/v4" + apiPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", apiPath)
	}

	return resp, nil
}
