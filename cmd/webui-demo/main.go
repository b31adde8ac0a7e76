package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/williamwith4ms/web-ui/pkg/relay"
	"github.com/williamwith4ms/web-ui/pkg/webui"
)

//go:embed static
var staticFS embed.FS

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("webui-demo failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webui-demo",
		Short: "Demo web UI with event bindings over the streaming relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(viper.GetString("log-level"))
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("port", webui.DefaultPort, "port to bind")
	cmd.Flags().String("host", webui.DefaultHost, "host to bind")
	cmd.Flags().String("title", "Event Binding Demo", "page title")
	cmd.Flags().String("static-dir", "", "serve static assets from this directory instead of the embedded ones")
	cmd.Flags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	_ = viper.BindPFlags(cmd.Flags())
	viper.SetEnvPrefix("WEBUI")
	viper.AutomaticEnv()

	return cmd
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func run(ctx context.Context) error {
	cfg := webui.DefaultConfig().
		WithPort(viper.GetInt("port")).
		WithHost(viper.GetString("host")).
		WithTitle(viper.GetString("title"))

	if dir := viper.GetString("static-dir"); dir != "" {
		cfg = cfg.WithStaticDir(dir)
	} else {
		sub, err := fs.Sub(staticFS, "static")
		if err != nil {
			return errors.Wrap(err, "embedded static assets")
		}
		cfg = cfg.WithStaticFS(sub)
	}

	srv, err := webui.New(ctx, cfg)
	if err != nil {
		return err
	}

	// Simple side-effect binding.
	if err := srv.BindClick("hello-btn", func() {
		log.Info().Msg("hello button was clicked")
	}); err != nil {
		return err
	}

	// Stateful binding returning data.
	var clicks atomic.Uint32
	if err := srv.Bind("count-btn", "click", func(ev *relay.Event) (*relay.Response, error) {
		count := clicks.Add(1)
		data, err := relay.MarshalData(map[string]any{"count": count})
		if err != nil {
			return nil, err
		}
		return &relay.Response{
			Success: true,
			Message: fmt.Sprintf("Button clicked %d times", count),
			Data:    data,
		}, nil
	}); err != nil {
		return err
	}

	// Binding that reads a sibling input value from the event payload.
	if err := srv.Bind("greet-btn", "click", func(ev *relay.Event) (*relay.Response, error) {
		data, err := ev.DataMap()
		if err != nil {
			return nil, err
		}
		name, _ := data["name-input"].(string)
		if name == "" {
			name = "Friend"
		}
		payload, err := relay.MarshalData(map[string]any{"greeting_sent": true, "name": name})
		if err != nil {
			return nil, err
		}
		return &relay.Response{
			Success: true,
			Message: fmt.Sprintf("Hello, %s! Nice to meet you.", name),
			Data:    payload,
		}, nil
	}); err != nil {
		return err
	}

	// Change events carry the input's current value.
	if err := srv.Bind("name-input", "change", func(ev *relay.Event) (*relay.Response, error) {
		data, err := ev.DataMap()
		if err != nil {
			return nil, err
		}
		value, _ := data["value"].(string)
		log.Info().Str("value", value).Msg("name input changed")
		return &relay.Response{
			Success: true,
			Message: fmt.Sprintf("Name updated to: %s", value),
		}, nil
	}); err != nil {
		return err
	}

	log.Info().Str("addr", "http://"+cfg.Addr()).Msg("visit the demo in a browser")
	return srv.Run(ctx)
}
