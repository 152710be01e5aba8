package main

import (
	"context"
	"fmt"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/cartsync"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runtime is what every subcommand works with: a session and a cart engine
// subscribed to it.
type runtime struct {
	cfg     *cliConfig
	log     logger.Logger
	session *session.Manager
	engine  *cartsync.Engine
	catalog *cartsync.HTTPCatalog
}

func newRuntime(cfg *cliConfig) *runtime {
	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	apiCfg := cartsync.ClientConfig{BaseURL: cfg.APIURL, Timeout: cfg.Timeout}

	mgr := session.NewManager(apiCfg, cfg.TokenFile, nil, log)
	gateway := cartsync.NewHTTPGateway(mgr.Client(), mgr)
	engine := cartsync.NewEngine(
		cartsync.NewFileStore(cfg.CartFile),
		gateway,
		log,
		mgr.IsAuthenticated(),
		cartsync.WithUnauthorizedHook(mgr.Expire),
	)
	return &runtime{
		cfg:     cfg,
		log:     log,
		session: mgr,
		engine:  engine,
		catalog: cartsync.NewHTTPCatalog(cartsync.NewClient(apiCfg, nil, nil)),
	}
}

// do runs fn while the engine listens for session events, and waits for
// those events to be applied before returning.
func (rt *runtime) do(ctx context.Context, fn func(ctx context.Context) error) error {
	events := rt.session.Subscribe()
	done := make(chan error, 1)
	go func() { done <- rt.engine.Run(ctx, events) }()

	err := fn(ctx)
	rt.session.Close()
	if runErr := <-done; runErr != nil && err == nil {
		err = runErr
	}
	_ = rt.log.Sync()
	return err
}

// load refreshes an authenticated cart so line lookups see server ids.
func (rt *runtime) load(ctx context.Context) error {
	return rt.engine.FetchCartFromBackend(ctx)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string
	var rt *runtime

	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Manage a marketplace shopping cart from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			rt = newRuntime(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./cartctl.yaml or ~/.cartctl/cartctl.yaml)")
	root.PersistentFlags().String("api-url", "", "marketplace API base URL")
	root.PersistentFlags().Duration("timeout", 0, "HTTP timeout")
	_ = v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	get := func() *runtime { return rt }
	root.AddCommand(
		newLoginCmd(get),
		newLogoutCmd(get),
		newAddCmd(get),
		newUpdateCmd(get),
		newRemoveCmd(get),
		newSelectCmd(get),
		newShowCmd(get),
		newClearCmd(get),
	)
	return root
}

func describeMode(rt *runtime) string {
	if p, ok := rt.session.Profile(); ok && rt.engine.Authenticated() {
		return fmt.Sprintf("signed in as %s", p.Email)
	}
	return "guest cart"
}
