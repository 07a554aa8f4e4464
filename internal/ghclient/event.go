package ghclient

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v68/github"
)

// EventContext is the Action trigger context: which event fired and the
// payload objects the run operates on.
type EventContext struct {
	EventName   string
	Owner       string
	Repo        string
	PullRequest *github.PullRequest
	Comment     *github.PullRequestComment
}

type eventPayload struct {
	PullRequest *github.PullRequest        `json:"pull_request"`
	Comment     *github.PullRequestComment `json:"comment"`
}

// LoadEvent reads the trigger context from the standard Action environment:
// GITHUB_REPOSITORY, GITHUB_EVENT_NAME and the payload file at
// GITHUB_EVENT_PATH.
func LoadEvent() (*EventContext, error) {
	repository := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok {
		return nil, fmt.Errorf("GITHUB_REPOSITORY is not set or malformed: %q", repository)
	}
	ec := &EventContext{
		EventName: os.Getenv("GITHUB_EVENT_NAME"),
		Owner:     owner,
		Repo:      repo,
	}
	path := os.Getenv("GITHUB_EVENT_PATH")
	if path == "" {
		return ec, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload %s: %w", path, err)
	}
	var payload eventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse event payload %s: %w", path, err)
	}
	ec.PullRequest = payload.PullRequest
	ec.Comment = payload.Comment
	return ec, nil
}
