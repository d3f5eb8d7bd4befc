package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/trusttrade/trusttrade/pkg/api"
	"github.com/trusttrade/trusttrade/pkg/config"
	"github.com/trusttrade/trusttrade/pkg/db/fs"
	"github.com/trusttrade/trusttrade/pkg/logging"
	"github.com/trusttrade/trusttrade/pkg/model"
	nethttp "github.com/trusttrade/trusttrade/pkg/net/http"
	"go.uber.org/zap"
)

var (
	flags = struct {
		ConfigFile string
		APIBaseURL string
		Debug      bool
	}{}

	root = &cobra.Command{
		Use:          "trusttrade",
		Short:        "TrustTrade is a terminal client for the TrustTrade asset marketplace",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			env, err := setup(ctx)
			if err != nil {
				return err
			}
			defer env.log.Sync() //nolint:errcheck

			opts := []model.Option{model.WithGlamourStyle(env.cfg.GlamourStyle)}
			if interests, err := fs.New(env.cfg.InterestsFile); err != nil {
				env.log.Warn("not recording interest history", zap.Error(err))
			} else {
				opts = append(opts, model.WithInterestLog(interests))
			}
			if updates, err := config.Watch(ctx, flags.ConfigFile, env.log.Named("config")); err != nil {
				env.log.Warn("not watching configuration for changes", zap.Error(err))
			} else {
				opts = append(opts, model.WithConfigUpdates(updates))
			}

			m := model.New(ctx, *env.cfg, env.client, env.log, opts...)
			defer m.Close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
)

// environment is what every command needs once flags and config are read.
type environment struct {
	cfg    *config.Config
	log    *zap.Logger
	client *api.Client
}

func setup(ctx context.Context) (*environment, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if flags.APIBaseURL != "" {
		cfg.APIBaseURL = flags.APIBaseURL
	}
	if flags.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	httpClient, err := nethttp.NewClient(ctx, cfg.Token, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to set up credentials: %w", err)
	}

	client, err := api.New(cfg.APIBaseURL,
		api.WithHTTPClient(httpClient),
		api.WithLogger(log.Named("api")),
		api.WithCacheBust(cfg.CacheBust),
	)
	if err != nil {
		return nil, err
	}

	log.Debug("configured", zap.String("api", cfg.APIBaseURL), zap.Int("pageSize", cfg.PageSize))
	return &environment{cfg: cfg, log: log, client: client}, nil
}

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().StringVar(&flags.APIBaseURL, "api", "", "marketplace API base URL (overrides apiBaseURL)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "log at debug level")
}

func Execute() {
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
