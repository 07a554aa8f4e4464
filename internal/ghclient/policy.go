package ghclient

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/go-github/v68/github"
	"github.com/sethvargo/go-retry"
)

// maxRateLimitRetries bounds how often a primary-rate-limited request is
// retried before the call is allowed to fail.
const maxRateLimitRetries = 3

// reviewSubmitPattern structurally matches review-submission endpoints of a
// specific pull request.
var reviewSubmitPattern = regexp.MustCompile(`/repos/[^/]+/[^/]+/pulls/\d+/reviews`)

// RetryPolicy decides whether a failed request should be retried. Review
// submissions hit by a secondary rate limit are never retried: a duplicated
// review cannot be detected afterwards, so losing one submission is cheaper
// than posting it twice.
type RetryPolicy struct{}

// ShouldRetry reports whether a request that failed with err may be retried.
// method and path identify the request structurally; retryCount is how many
// retries already happened.
func (RetryPolicy) ShouldRetry(method, path string, err error, retryCount int) bool {
	var rateLimit *github.RateLimitError
	if errors.As(err, &rateLimit) {
		return retryCount <= maxRateLimitRetries
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return !(method == "POST" && reviewSubmitPattern.MatchString(path))
	}
	return false
}

// retryAfter extracts the server-suggested wait, when one was provided.
func retryAfter(err error) time.Duration {
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) && abuse.RetryAfter != nil {
		return *abuse.RetryAfter
	}
	var rateLimit *github.RateLimitError
	if errors.As(err, &rateLimit) {
		return time.Until(rateLimit.Rate.Reset.Time)
	}
	return 0
}

// withRetry runs fn under the retry policy with exponential backoff. Errors
// the policy rejects surface immediately.
func (c *Client) withRetry(ctx context.Context, method, path string, fn func(ctx context.Context) error) error {
	logger := logging.GetLogger()
	attempt := 0
	backoff := retry.WithMaxRetries(maxRateLimitRetries, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !c.policy.ShouldRetry(method, path, err, attempt+1) {
			return err
		}
		attempt++
		if wait := retryAfter(err); wait > 0 {
			logger.Warn(ctx, "Rate limited on %s %s, retry %d after %s", method, path, attempt, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			logger.Warn(ctx, "Rate limited on %s %s, retry %d", method, path, attempt)
		}
		return retry.RetryableError(err)
	})
}
