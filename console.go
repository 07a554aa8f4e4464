package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/briandowns/spinner"
	"github.com/google/go-github/v68/github"
	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
)

// Console handles user-facing output for local runs, separate from logging.
// Inside a CI job the writer is not a terminal and colors are disabled.
type Console struct {
	w       io.Writer
	logger  *logging.Logger
	spinner *spinner.Spinner
	color   bool

	mu sync.Mutex
}

func NewConsole(w io.Writer, logger *logging.Logger) *Console {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Prefix = "Processing "
	if err := s.Color("cyan"); err != nil {
		logger.Warn(context.Background(), "Failed to set spinner color: %v", err)
	}

	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}

	return &Console{
		w:       w,
		logger:  logger,
		color:   color,
		spinner: s,
	}
}

// Interactive reports whether the console can prompt the user.
func (c *Console) Interactive() bool {
	return c.color
}

func (c *Console) StartSpinner(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spinner.Suffix = fmt.Sprintf(" %s", message)
	c.spinner.Start()
}

func (c *Console) StopSpinner() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner.Active() {
		c.spinner.Stop()
	}
}

// WithSpinner runs fn under a spinner, honoring context cancellation.
func (c *Console) WithSpinner(ctx context.Context, message string, fn func() error) error {
	c.StartSpinner(message)
	defer c.StopSpinner()

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConfirmRun asks whether the review should run and post to GitHub. Used only
// for interactive local runs; CI never prompts.
func (c *Console) ConfirmRun(number int) (bool, error) {
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Review PR #%d and post the results to GitHub?", number),
		Default: false,
		Help:    "This will post review comments and update the summary comment on the pull request",
	}

	var response bool
	err := survey.AskOne(prompt, &response, survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = "?"
		if c.color {
			icons.Question.Format = "cyan+b"
		}
	}))
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			c.println(aurora.Red("\n✖ Operation cancelled").String())
			return false, nil
		}
		return false, err
	}
	return response, nil
}

// StartReview prints the run header for a pull request.
func (c *Console) StartReview(pr *github.PullRequest) {
	c.printHeader(fmt.Sprintf("Reviewing PR #%d: %s", pr.GetNumber(), pr.GetTitle()))
	c.printf("  Author: %s\n", pr.GetUser().GetLogin())
	c.printf("  Files:  %d files changed\n", pr.GetChangedFiles())
	c.println()
}

func (c *Console) ReviewComplete() {
	if c.color {
		c.println(aurora.Green("\n✓ Review completed").String())
		return
	}
	c.println("\n✓ Review completed")
}

func (c *Console) printHeader(text string) {
	if c.color {
		text = aurora.Bold(text).String()
	}
	c.println(text)
}

func (c *Console) println(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, a...)
}

func (c *Console) printf(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, a...)
}
