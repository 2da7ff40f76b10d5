package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spiffcs/repohealth/internal/log"
	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/timeutil"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// execute posts a GraphQL query and decodes the data payload into out.
// Transport errors and GraphQL error payloads both abort the run.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Trace("graphql request", "bytes", len(payload))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}
	log.Debug("graphql response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GraphQL request returned status %d: %s", resp.StatusCode, string(body))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("GraphQL API returned errors: %s", gqlResp.Errors[0].Message)
	}
	if gqlResp.Data == nil {
		return fmt.Errorf("unexpected GraphQL response: data is missing")
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to decode GraphQL data: %w", err)
	}
	return nil
}

// rawActor is the author shape returned by the `... on User { databaseId }`
// fragment. A deleted account comes back as null; an app or organization has
// a login but no databaseId.
type rawActor struct {
	Login      string `json:"login"`
	DatabaseID *int64 `json:"databaseId"`
}

// identity normalizes a raw actor. A null actor maps to the ghost identity
// with no id; ghosts are never merged with each other downstream.
func (a *rawActor) identity() *model.Identity {
	if a == nil {
		return &model.Identity{Login: "ghost"}
	}
	login := a.Login
	if login == "" {
		login = "ghost"
	}
	return &model.Identity{Login: login, ID: a.DatabaseID}
}

type rawLabelConn struct {
	Edges []struct {
		Node struct {
			Name string `json:"name"`
		} `json:"node"`
	} `json:"edges"`
}

func (l rawLabelConn) names() []string {
	names := make([]string, 0, len(l.Edges))
	for _, e := range l.Edges {
		names = append(names, e.Node.Name)
	}
	return names
}

type rawPageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
}

const pullRequestsQuery = `
query($owner: String!, $repo: String!, $cursor: String) {
  repository(owner: $owner, name: $repo) {
    pullRequests(first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC}) {
      edges {
        node {
          number
          title
          state
          createdAt
          closedAt
          mergedAt
          mergedBy { login, ... on User { databaseId } }
          author { login, ... on User { databaseId } }
          labels(first: 20) {
            edges { node { name } }
          }
          reviews(first: 100) {
            edges {
              node {
                author { login, ... on User { databaseId } }
                submittedAt
                state
              }
            }
          }
          comments(first: 100) {
            edges {
              node {
                author { login, ... on User { databaseId } }
                createdAt
              }
            }
          }
        }
        cursor
      }
      pageInfo { hasNextPage }
    }
  }
}`

const issuesQuery = `
query($owner: String!, $repo: String!, $cursor: String) {
  repository(owner: $owner, name: $repo) {
    issues(first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC}) {
      edges {
        node {
          number
          title
          state
          createdAt
          closedAt
          author { login, ... on User { databaseId } }
          labels(first: 20) {
            edges { node { name } }
          }
          comments(first: 100) {
            edges {
              node {
                author { login, ... on User { databaseId } }
                createdAt
              }
            }
          }
        }
        cursor
      }
      pageInfo { hasNextPage }
    }
  }
}`

type rawPR struct {
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	State     string       `json:"state"`
	CreatedAt string       `json:"createdAt"`
	ClosedAt  *string      `json:"closedAt"`
	MergedAt  *string      `json:"mergedAt"`
	MergedBy  *rawActor    `json:"mergedBy"`
	Author    *rawActor    `json:"author"`
	Labels    rawLabelConn `json:"labels"`
	Reviews   struct {
		Edges []struct {
			Node struct {
				Author      *rawActor `json:"author"`
				SubmittedAt *string   `json:"submittedAt"`
				State       string    `json:"state"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"reviews"`
	Comments rawCommentConn `json:"comments"`
}

type rawIssue struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	State     string         `json:"state"`
	CreatedAt string         `json:"createdAt"`
	ClosedAt  *string        `json:"closedAt"`
	Author    *rawActor      `json:"author"`
	Labels    rawLabelConn   `json:"labels"`
	Comments  rawCommentConn `json:"comments"`
}

type rawCommentConn struct {
	Edges []struct {
		Node struct {
			Author    *rawActor `json:"author"`
			CreatedAt string    `json:"createdAt"`
		} `json:"node"`
	} `json:"edges"`
}

// parseOptional parses an optional timestamp string.
func parseOptional(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := timeutil.ParseInstant(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FetchPullRequests pages through the repository's pull requests newest
// first, stopping once everything past the cutoff has been seen, and returns
// normalized items at or after the cutoff.
func (c *Client) FetchPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]model.Item, error) {
	var items []model.Item
	var cursor *string

	for page := 1; ; page++ {
		variables := map[string]any{"owner": owner, "repo": repo}
		if cursor != nil {
			variables["cursor"] = *cursor
		}

		var data struct {
			Repository struct {
				PullRequests struct {
					Edges []struct {
						Node   rawPR  `json:"node"`
						Cursor string `json:"cursor"`
					} `json:"edges"`
					PageInfo rawPageInfo `json:"pageInfo"`
				} `json:"pullRequests"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, pullRequestsQuery, variables, &data); err != nil {
			return nil, fmt.Errorf("fetching pull requests: %w", err)
		}

		conn := data.Repository.PullRequests
		log.Info("fetched pull request page", "page", page, "count", len(conn.Edges))

		for _, edge := range conn.Edges {
			item, err := normalizePR(edge.Node)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			cur := edge.Cursor
			cursor = &cur
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		if pastCutoff(items, since) {
			break
		}
	}

	return filterSince(items, since), nil
}

// FetchIssues pages through the repository's issues newest first, stopping
// once everything past the cutoff has been seen, and returns normalized
// items at or after the cutoff.
func (c *Client) FetchIssues(ctx context.Context, owner, repo string, since time.Time) ([]model.Item, error) {
	var items []model.Item
	var cursor *string

	for page := 1; ; page++ {
		variables := map[string]any{"owner": owner, "repo": repo}
		if cursor != nil {
			variables["cursor"] = *cursor
		}

		var data struct {
			Repository struct {
				Issues struct {
					Edges []struct {
						Node   rawIssue `json:"node"`
						Cursor string   `json:"cursor"`
					} `json:"edges"`
					PageInfo rawPageInfo `json:"pageInfo"`
				} `json:"issues"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, issuesQuery, variables, &data); err != nil {
			return nil, fmt.Errorf("fetching issues: %w", err)
		}

		conn := data.Repository.Issues
		log.Info("fetched issue page", "page", page, "count", len(conn.Edges))

		for _, edge := range conn.Edges {
			item, err := normalizeIssue(edge.Node)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			cur := edge.Cursor
			cursor = &cur
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		if pastCutoff(items, since) {
			break
		}
	}

	return filterSince(items, since), nil
}

func normalizePR(raw rawPR) (model.Item, error) {
	createdAt, err := timeutil.ParseInstant(raw.CreatedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("pull request #%d: %w", raw.Number, err)
	}
	closedAt, err := parseOptional(raw.ClosedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("pull request #%d: %w", raw.Number, err)
	}
	mergedAt, err := parseOptional(raw.MergedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("pull request #%d: %w", raw.Number, err)
	}

	item := model.Item{
		Number:    raw.Number,
		Title:     raw.Title,
		State:     model.ItemState(raw.State),
		CreatedAt: &createdAt,
		ClosedAt:  closedAt,
		MergedAt:  mergedAt,
		Author:    raw.Author.identity(),
		Labels:    raw.Labels.names(),
	}
	if raw.MergedBy != nil {
		item.MergedBy = raw.MergedBy.identity()
	}

	for _, e := range raw.Reviews.Edges {
		submittedAt, err := parseOptional(e.Node.SubmittedAt)
		if err != nil {
			return model.Item{}, fmt.Errorf("pull request #%d review: %w", raw.Number, err)
		}
		item.Reviews = append(item.Reviews, model.Review{
			Author:      e.Node.Author.identity(),
			SubmittedAt: submittedAt,
			State:       e.Node.State,
		})
	}

	comments, err := normalizeComments(raw.Comments)
	if err != nil {
		return model.Item{}, fmt.Errorf("pull request #%d comment: %w", raw.Number, err)
	}
	item.Comments = comments

	return item, nil
}

func normalizeIssue(raw rawIssue) (model.Item, error) {
	createdAt, err := timeutil.ParseInstant(raw.CreatedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("issue #%d: %w", raw.Number, err)
	}
	closedAt, err := parseOptional(raw.ClosedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("issue #%d: %w", raw.Number, err)
	}

	comments, err := normalizeComments(raw.Comments)
	if err != nil {
		return model.Item{}, fmt.Errorf("issue #%d comment: %w", raw.Number, err)
	}

	return model.Item{
		Number:    raw.Number,
		Title:     raw.Title,
		State:     model.ItemState(raw.State),
		CreatedAt: &createdAt,
		ClosedAt:  closedAt,
		Author:    raw.Author.identity(),
		Labels:    raw.Labels.names(),
		Comments:  comments,
	}, nil
}

func normalizeComments(conn rawCommentConn) ([]model.Comment, error) {
	// A deleted account comes back as a null author; it normalizes to the
	// ghost identity rather than being dropped, since its comments still
	// count as responses.
	var comments []model.Comment
	for _, e := range conn.Edges {
		createdAt, err := timeutil.ParseInstant(e.Node.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, model.Comment{
			Author:    e.Node.Author.identity(),
			CreatedAt: &createdAt,
		})
	}
	return comments, nil
}

// pastCutoff reports whether the newest-first fetch has paged beyond the
// cutoff, meaning no further page can contain in-range items.
func pastCutoff(items []model.Item, since time.Time) bool {
	if since.IsZero() || len(items) == 0 {
		return false
	}
	created, ok := items[len(items)-1].Created()
	return ok && created.Before(since)
}

// filterSince drops items created before the cutoff.
func filterSince(items []model.Item, since time.Time) []model.Item {
	if since.IsZero() {
		return items
	}
	var out []model.Item
	for _, it := range items {
		if created, ok := it.Created(); ok && !created.Before(since) {
			out = append(out, it)
		}
	}
	return out
}
