package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/judolhunter/internal/demoserver"
	"github.com/raysh454/judolhunter/internal/server"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	defaults := server.DefaultConfig()
	var (
		addr      string
		retention time.Duration
		noQuota   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Jalankan HTTP API (scan, progress WebSocket, riwayat)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.DefaultConfig()
			cfg.ListenAddr = addr
			cfg.EventRetention = retention
			cfg.AppConfig = global.appConfig()
			cfg.AppConfig.Quota.Enabled = !noQuota
			cfg.Logger = global.logger(true)

			s, err := server.NewServer(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if !global.quiet {
				printBanner(cmd.ErrOrStderr())
				fmt.Fprintf(cmd.ErrOrStderr(), "API listening on %s (docs: /swagger/index.html)\n", addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.ListenAndServe(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&addr, "listen", "l", defaults.ListenAddr, "Listen address")
	f.DurationVar(&retention, "event-retention", defaults.EventRetention, "How long progress of finished scans stays available")
	f.BoolVar(&noQuota, "no-quota", false, "Disable plan and weekly domain limits")
	return cmd
}

func newDemoCmd(global *globalOptions) *cobra.Command {
	cfg := demoserver.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Jalankan situs demo yang menyajikan konten judol hanya ke Googlebot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds := demoserver.New(cfg, global.logger(true))

			if !global.quiet {
				w := cmd.ErrOrStderr()
				printBanner(w)
				fmt.Fprintf(w, "Demo site on http://localhost:%d/\n", cfg.Port)
				fmt.Fprintf(w, "Control panel at http://localhost:%d/demo/control\n", cfg.Port)
				fmt.Fprintln(w, "Pages:")
				for _, p := range ds.Pages() {
					fmt.Fprintf(w, "  %-16s %s\n", p.Path, p.Description)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ds.ListenAndServe(ctx)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port for the demo site")
	f.BoolVar(&cfg.Cloaked, "cloaked", cfg.Cloaked, "Start with cloaking switched on for every page")
	return cmd
}
