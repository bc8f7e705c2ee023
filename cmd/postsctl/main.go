// Command postsctl is a small terminal client for the posts server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/debemdeboas/postbox/internal/client"
	"github.com/debemdeboas/postbox/internal/config"
	"github.com/debemdeboas/postbox/internal/model"
)

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const usage = `usage: postsctl <command> [args]

commands:
  list                 list every post
  get <id>             show one post
  create <text|->      create a post, "-" reads the body from stdin
  update <id> <text|-> replace the body of a post
  delete <id>          delete a post

The server URL is read from POSTBOX_URL (default http://localhost:3000).`

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv(config.EnvClientURL)
	if baseURL == "" {
		baseURL = config.DefaultClientURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, client.New(baseURL), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

var errUsage = errors.New(usage)

func run(ctx context.Context, c *client.Client, args []string, stdin io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	bodyArg := func(s string) (string, error) {
		if s != "-" {
			return s, nil
		}
		data, err := io.ReadAll(stdin)
		return string(data), err
	}

	switch cmd, rest := args[0], args[1:]; {
	case cmd == "list" && len(rest) == 0:
		posts, err := c.List(ctx)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no posts"))
		}
		for _, p := range posts {
			fmt.Fprintln(out, renderPost(p))
		}
		return nil

	case cmd == "get" && len(rest) == 1:
		post, err := c.Get(ctx, model.PostID(rest[0]))
		return printPost(out, post, err)

	case cmd == "create" && len(rest) == 1:
		body, err := bodyArg(rest[0])
		if err != nil {
			return err
		}
		post, err := c.Create(ctx, body)
		return printPost(out, post, err)

	case cmd == "update" && len(rest) == 2:
		body, err := bodyArg(rest[1])
		if err != nil {
			return err
		}
		post, err := c.Update(ctx, model.PostID(rest[0]), body)
		return printPost(out, post, err)

	case cmd == "delete" && len(rest) == 1:
		post, err := c.Delete(ctx, model.PostID(rest[0]))
		return printPost(out, post, err)

	default:
		return errUsage
	}
}

func printPost(out io.Writer, post *model.Post, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderPost(*post))
	return nil
}

func renderPost(p model.Post) string {
	body := p.Body
	if strings.TrimSpace(body) == "" {
		body = mutedStyle.Render("(empty)")
	}
	return idStyle.Render(string(p.ID)) + "\n" + bodyStyle.Render(body)
}
