package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bububa/itinerary-agents/web"
)

const serveHistoryRuns = 5

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the itinerary web form",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l := newLogger(cfg)
		driver := newDriver(cfg, historyRuns(cfg, serveHistoryRuns), l)
		srv := web.New(driver,
			web.WithLogger(l),
			web.WithRequestTimeout(cfg.Server.RequestTimeout),
			web.WithSecureCookie(cfg.Server.SecureCookie),
			web.WithDefaultKey(cfg.Model.APIKey != ""),
		)
		return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "listen address (default :8501)")
	ServeCmd.Flags().Int("history", 0, "past exchanges kept per session (default 5)")
	viper.BindPFlag("server.addr", ServeCmd.Flags().Lookup("addr"))
	viper.BindPFlag("history_runs", ServeCmd.Flags().Lookup("history"))
}
