package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bububa/itinerary-agents/cmd/itinerary/commands"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "itinerary",
	Short: "Travel Itinerary Generator",
	Long: `itinerary turns a destination, a budget and a trip length into a day-wise
markdown itinerary. A Travel Search agent picks a place from live web results,
then an Itinerary Planner agent writes the plan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.PlanCmd)
	rootCmd.AddCommand(commands.ConfigCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./itinerary.yaml or $HOME/itinerary.yaml)")
	flags.String("model", "", "model id")
	flags.String("base-url", "", "OpenAI-compatible API base URL")
	flags.String("search-provider", "", "web search provider: duckduckgo or searxng")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	viper.BindPFlag("model.name", flags.Lookup("model"))
	viper.BindPFlag("model.base_url", flags.Lookup("base-url"))
	viper.BindPFlag("search.provider", flags.Lookup("search-provider"))
	viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	viper.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func initConfig() {
	commands.SetConfigPath(cfgFile)
}
