package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petasbytes/memory-agent/internal/config"
	"github.com/petasbytes/memory-agent/internal/logger"
	"github.com/petasbytes/memory-agent/internal/mem0"
	"github.com/petasbytes/memory-agent/internal/provider"
	"github.com/petasbytes/memory-agent/memory"
)

const rootLongDesc string = `A personal assistant that remembers user preferences and past interactions.

Memory is kept in the Mem0 Platform and scoped per user. Without a working
MEM0_API_KEY the assistant still runs; memory tools then report that the
memory client is not initialized.

Examples:
  agent --user alice
  agent memory search "favorite tea" --user alice
  agent memory save "I prefer green tea" --user alice`

const rootShortDesc string = "Chat with a personal assistant that has memory"

// deps are the seams the commands reach the outside world through.
type deps struct {
	newStore  func(ctx context.Context, cfg mem0.Config, log *slog.Logger) (memory.Store, error)
	newClient func() *anthropic.Client
	stdin     io.Reader
	logOut    io.Writer
}

func defaultDeps() deps {
	return deps{
		newStore: func(ctx context.Context, cfg mem0.Config, log *slog.Logger) (memory.Store, error) {
			c, err := mem0.NewClient(ctx, cfg, log)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		newClient: func() *anthropic.Client { return provider.NewAnthropicClient() },
		stdin:     os.Stdin,
		logOut:    os.Stderr,
	}
}

// app is the state shared by every command once flags are parsed.
type app struct {
	deps
	v       *viper.Viper
	cfg     *config.Config
	log     *slog.Logger
	adapter memory.Adapter
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d, v: config.InitViper()}

	cmd := &cobra.Command{
		Use:          "agent",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.chat(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddFlags(cmd)
	config.BindFlags(a.v, cmd)

	cmd.AddCommand(newMemoryCmd(a))
	return cmd
}

// setup resolves config, builds the logger and picks the adapter variant.
// It runs once per invocation, so the variant never changes mid-process.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(
		logger.WithDebug(cfg.Debug),
		logger.WithPretty(true),
		logger.WithWriter(a.logOut),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	store, err := a.newStore(ctx, cfg.Mem0.Client(), a.log)
	if err != nil {
		a.log.Warn("memory client unavailable; memory features disabled", "error", err)
	}
	a.adapter = memory.New(store, err, memory.WithLogger(a.log.With("component", "memory")))
	return nil
}
