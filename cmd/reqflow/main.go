// Command reqflow issues a single request from the command line and
// prints the decoded response as JSON.
//
//	reqflow [flags] get /users id=7
//	reqflow [flags] post /users '{"name":"Ann"}'
//	reqflow [flags] download -o pic.jpg -dir sess /pics/1
//	reqflow [flags] upload -name f.txt /files ./f.txt
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/reqflow/client"
	"github.com/adamwoolhether/reqflow/client/task"
	"github.com/adamwoolhether/reqflow/config"
	"github.com/adamwoolhether/reqflow/errs"
	"github.com/adamwoolhether/reqflow/fsys"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		var e *errs.Error
		if errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, e.Description(), e.Remediation())
		}

		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("reqflow", flag.ContinueOnError)
	fset.SetOutput(stderr)

	cfgPath := fset.String("config", "", "path to a TOML config file")
	baseURL := fset.String("base", "", "base URL, overrides the config")
	debug := fset.Bool("debug", false, "log requests before sending")
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath, config.WithBaseURL(*baseURL))
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || *debug

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	c, err := client.Build(cfg.BaseURL, append(opts, client.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rest := fset.Args()
	if len(rest) < 2 {
		return errors.New("usage: reqflow [flags] get|delete|post|put|patch|download|upload <endpoint> [args]")
	}

	cmd, endpoint, rest := rest[0], rest[1], rest[2:]

	switch cmd {
	case "get", "delete":
		params, err := parseParams(rest)
		if err != nil {
			return err
		}
		call := c.Get
		if cmd == "delete" {
			call = c.Delete
		}
		return await(ctx, stdout, func(done func(any, error)) *task.Handle {
			return call(ctx, endpoint, params, done)
		})

	case "post", "put", "patch":
		if len(rest) != 1 {
			return fmt.Errorf("%s needs a JSON body", cmd)
		}
		if !json.Valid([]byte(rest[0])) {
			return errors.New("body is not valid JSON")
		}
		body := json.RawMessage(rest[0])
		call := map[string]func(context.Context, string, any, func(any, error)) *task.Handle{
			"post":  c.Post,
			"put":   c.Put,
			"patch": c.Patch,
		}[cmd]
		return await(ctx, stdout, func(done func(any, error)) *task.Handle {
			return call(ctx, endpoint, body, done)
		})

	case "download":
		return downloadCmd(ctx, c, stdout, stderr, endpoint, rest)

	case "upload":
		return uploadCmd(ctx, c, stdout, stderr, endpoint, rest)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func downloadCmd(ctx context.Context, c *client.Client, stdout, stderr io.Writer, endpoint string, args []string) error {
	fset := flag.NewFlagSet("download", flag.ContinueOnError)
	fset.SetOutput(stderr)
	name := fset.String("o", "", "output filename, defaults to the temp file's name")
	dir := fset.String("dir", "", "directory under Documents")
	progress := fset.Bool("progress", false, "log transfer progress")
	if err := fset.Parse(args); err != nil {
		return err
	}

	params, err := parseParams(fset.Args())
	if err != nil {
		return err
	}

	var opts []client.DownloadOption
	if *progress {
		opts = append(opts, client.WithProgress())
	}

	return await(ctx, stdout, func(done func(string, error)) *task.Handle {
		return c.DownloadFile(ctx, endpoint, params, *name, fsys.In(fsys.Documents, *dir), done, opts...)
	})
}

func uploadCmd(ctx context.Context, c *client.Client, stdout, stderr io.Writer, endpoint string, args []string) error {
	fset := flag.NewFlagSet("upload", flag.ContinueOnError)
	fset.SetOutput(stderr)
	name := fset.String("name", "", "filename sent to the server, defaults to the file's name")
	contentType := fset.String("type", "", "part content type, detected when empty")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if fset.NArg() < 1 {
		return errors.New("upload needs a file path")
	}

	path := fset.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	params, err := parseParams(fset.Args()[1:])
	if err != nil {
		return err
	}

	filename := *name
	if filename == "" {
		filename = filepath.Base(path)
	}

	opts := []client.UploadOption{client.WithFileName(filename)}
	if *contentType != "" {
		opts = append(opts, client.WithFileContentType(*contentType))
	}

	return await(ctx, stdout, func(done func(any, error)) *task.Handle {
		return c.UploadFile(ctx, endpoint, params, data, done, opts...)
	})
}

// await issues a call and blocks until its completion or an interrupt,
// then prints the value as JSON.
func await[T any](ctx context.Context, stdout io.Writer, call func(done func(T, error)) *task.Handle) error {
	type result struct {
		val T
		err error
	}

	ch := make(chan result, 1)
	h := call(func(v T, err error) { ch <- result{v, err} })

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		h.Cancel()
		r = <-ch
	}

	if r.err != nil {
		return r.err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(r.val)
}

func parseParams(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}

	params := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parameter %q must be key=value", arg)
		}
		params[k] = v
	}

	return params, nil
}
