package github

import (
	"context"
	"time"

	"github.com/google/go-github/v56/github"
)

const maxPerPage = 100

// Repository is the listing view of a GitHub repository
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Owner         string    `json:"owner"`
	Description   string    `json:"description,omitempty"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	DefaultBranch string    `json:"defaultBranch"`
	Language      string    `json:"language,omitempty"`
	Stars         int       `json:"stars"`
	HTMLURL       string    `json:"htmlUrl"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListOptions controls repository listing
type ListOptions struct {
	// Sort is one of created, updated, pushed, full_name. Default updated.
	Sort    string
	PerPage int
	// Limit caps the total returned; zero means all pages.
	Limit int
}

// ListRepositories returns repositories the authenticated user can access,
// following pagination until Limit is reached or pages run out
func (c *Client) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	sort := opts.Sort
	if sort == "" {
		sort = "updated"
	}
	direction := "desc"
	if sort == "full_name" {
		direction = "asc"
	}
	perPage := opts.PerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}
	if opts.Limit > 0 && opts.Limit < perPage {
		perPage = opts.Limit
	}

	listOpts := &github.RepositoryListOptions{
		Affiliation: "owner,collaborator,organization_member",
		Sort:        sort,
		Direction:   direction,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var repos []Repository
	for {
		page, resp, err := c.client.Repositories.List(ctx, "", listOpts)
		if err != nil {
			return nil, wrapError("list repositories", err)
		}

		for _, r := range page {
			repos = append(repos, toRepository(r))
			if opts.Limit > 0 && len(repos) >= opts.Limit {
				return repos, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return repos, nil
}

func toRepository(r *github.Repository) Repository {
	return Repository{
		ID:            r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Owner:         r.GetOwner().GetLogin(),
		Description:   r.GetDescription(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		HTMLURL:       r.GetHTMLURL(),
		UpdatedAt:     r.GetUpdatedAt().Time,
	}
}
