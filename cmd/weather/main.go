package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-assistant/internal/app"
	"github.com/i474232898/weather-assistant/internal/config"
	"github.com/i474232898/weather-assistant/internal/logging"
	"github.com/i474232898/weather-assistant/internal/mcpclient"
	"github.com/i474232898/weather-assistant/internal/query"
	"github.com/i474232898/weather-assistant/internal/scheduler"
	"github.com/i474232898/weather-assistant/internal/weather"
)

type options struct {
	verbose    bool
	timeout    time.Duration
	direct     bool
	city       string
	server     string
	serverArgs []string
	every      time.Duration
}

var opts options

// session answers questions either through the MCP server or in-process.
type session interface {
	Ask(ctx context.Context, text string) weather.Answer
	AskCity(ctx context.Context, city string) weather.Answer
	Close() error
}

type directSession struct {
	gw *weather.Gateway
}

func (d directSession) Ask(ctx context.Context, text string) weather.Answer {
	return d.gw.Ask(ctx, text)
}

func (d directSession) AskCity(ctx context.Context, city string) weather.Answer {
	intent, err := query.NewCityCurrent(city)
	if err != nil {
		return weather.Answer{Query: city, Text: weather.RenderError(err), Failed: true, Err: err}
	}
	return d.gw.Answer(ctx, city, intent)
}

func (directSession) Close() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "weather [query...]",
	Short: "Ask about the weather in Chinese or English",
	Example: `  weather 北京今天的天气怎么样？
  weather "weather in Paris for 5 days"
  weather --city Tokyo
  weather --direct 上海未来3天的天气`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" && opts.city == "" {
			_ = cmd.Help()
			return errors.New("no query given")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		defer cancel()

		sess, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		var a weather.Answer
		if opts.city != "" {
			a = sess.AskCity(ctx, opts.city)
		} else {
			a = sess.Ask(ctx, text)
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Text)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch query...",
	Short: "Re-ask one or more questions on an interval",
	Example: `  weather watch 北京天气 "London forecast" --every 30m`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dialCtx, cancel := context.WithTimeout(ctx, opts.timeout)
		sess, err := openSession(dialCtx, cmd)
		cancel()
		if err != nil {
			return err
		}
		defer sess.Close()

		sched := scheduler.New(args, opts.every, scheduler.AskFunc(sess.Ask), cmd.OutOrStdout())
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		<-ctx.Done()
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")
	pf.DurationVarP(&opts.timeout, "timeout", "t", 30*time.Second, "bound for starting the server and answering")
	pf.BoolVarP(&opts.direct, "direct", "d", false, "resolve in-process instead of through the MCP server")
	pf.StringVar(&opts.server, "server", "weather-server", "MCP server command to spawn")
	pf.StringSliceVar(&opts.serverArgs, "server-arg", nil, "extra argument for the server command (repeatable)")

	rootCmd.Flags().StringVarP(&opts.city, "city", "c", "", "ask for the current weather in this city, skipping interpretation")

	watchCmd.Flags().DurationVar(&opts.every, "every", 15*time.Minute, "interval between runs")
	rootCmd.AddCommand(watchCmd)
}

func openSession(ctx context.Context, cmd *cobra.Command) (session, error) {
	logging.Setup(opts.verbose, os.Stderr)

	if opts.direct {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return nil, err
		}
		a, err := app.New(cfg)
		if err != nil {
			return nil, err
		}
		return directSession{gw: a.Gateway}, nil
	}

	args := opts.serverArgs
	if opts.verbose {
		args = append(args, "--verbose")
	}
	log.Debug().Str("server", opts.server).Strs("args", args).Msg("starting server")
	c, err := mcpclient.Dial(ctx, opts.server, args...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
