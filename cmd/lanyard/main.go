// Command lanyard looks up Discord presences through Lanyard and can serve them over HTTP
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/infinitybotlist/lanyard/cmd"
	"github.com/infinitybotlist/lanyard/config"
	"github.com/infinitybotlist/lanyard/dovewing"
	hotcacheredis "github.com/infinitybotlist/lanyard/hotcache/redis"
	"github.com/infinitybotlist/lanyard/lanyard"
	"github.com/infinitybotlist/lanyard/relay"
	"github.com/infinitybotlist/lanyard/shellcli"
	"github.com/infinitybotlist/lanyard/snippets"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type app struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	client dovewing.Fetcher
	out    io.Writer
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logger := snippets.CreateZapWithLevel(cfg.LogLevel())
	defer logger.Sync()

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: &lanyard.Client{HTTP: cfg.HTTPClient(logger)},
		out:    os.Stdout,
	}

	state := cmd.CommandLineState{
		Commands: a.commands(),
		GetHeader: func() string {
			return "lanyard " + relay.Version + " (" + cmd.GetGitCommit() + ")"
		},
	}

	state.Run()
}

func (a *app) commands() map[string]cmd.Command {
	cmds := map[string]cmd.Command{
		"serve": {
			Help:  "Serve the relay",
			Usage: "serve",
			Func: func(progname string, args []string) int {
				return a.serve()
			},
			ArgValidate: cmd.ExactArgs(0),
		},
		"shell": {
			Help:  "Start an interactive shell",
			Usage: "shell",
			Func: func(progname string, args []string) int {
				if err := a.shell().Run(context.Background()); err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					return 1
				}

				return 0
			},
			ArgValidate: cmd.ExactArgs(0),
		},
	}

	for name, l := range lookups {
		name, l := name, l

		cmds[name] = cmd.Command{
			Help:        l.help,
			Usage:       name + " <id>",
			Example:     name + " 94490510688792576",
			ArgValidate: cmd.ExactArgs(1, "id"),
			Func: func(progname string, args []string) int {
				if err := l.fn(context.Background(), a.client, args[0], a.out); err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					return 1
				}

				return 0
			},
		}
	}

	return cmds
}

func (a *app) shell() *shellcli.ShellCli[app] {
	s := &shellcli.ShellCli[app]{
		Data:            a,
		Output:          a.out,
		CaseInsensitive: true,
		Prompter: func(*shellcli.ShellCli[app]) string {
			return "lanyard> "
		},
	}

	s.AddCommand("help", s.Help())

	names := make([]string, 0, len(lookups))

	for name := range lookups {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		l := lookups[name]

		s.AddCommand(name, &shellcli.Command[app]{
			Description: l.help,
			Args: []shellcli.Arg{
				{Name: "id", Description: "The users Discord ID"},
			},
			Run: func(s *shellcli.ShellCli[app], args map[string]string) error {
				id := args["id"]

				if id == "" {
					return errors.New("an id is required")
				}

				return l.fn(context.Background(), s.Data.client, id, s.Out())
			},
		})
	}

	return s
}

func (a *app) serve() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := hotcacheredis.Connect(ctx, a.cfg.Relay.RedisURL)

	if err != nil {
		a.logger.Errorw("Failed to connect to redis", "error", err)
		return 1
	}

	defer rdb.Close()

	h := relay.New(relay.Options{
		Client: a.client,
		Logger: a.logger,
		RateLimitCache: hotcacheredis.RedisHotCache[int]{
			Redis:  rdb,
			Prefix: "lanyard:rl:",
		},
		RateLimitRequests: a.cfg.Relay.RateLimitRequests,
		RateLimitWindow:   a.cfg.Relay.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              a.cfg.Relay.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Infow("Starting relay", "addr", a.cfg.Relay.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorw("Relay stopped", "error", err)
			return 1
		}

		return 0
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("Failed to shut down relay", "error", err)
		return 1
	}

	return 0
}
