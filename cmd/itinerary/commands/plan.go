package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bububa/itinerary-agents/tools"
	"github.com/bububa/itinerary-agents/travel"
)

const (
	planHistoryRuns = 10
	planSessionID   = "cli"
)

var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip from terminal prompts",
	Long: `Asks for a location, a budget and a number of days, then prints a day-wise
markdown itinerary. Web search is always on. Flags pre-fill the prompts.`,
	RunE: runPlan,
}

func init() {
	flags := PlanCmd.Flags()
	flags.StringP("destination", "d", "", "country or city")
	flags.StringP("budget", "b", "", "budget, e.g. 2000 USD")
	flags.IntP("days", "n", 0, "number of days (1-30)")
	flags.StringP("interests", "i", "", "interests, e.g. history, food")
	flags.Int("history", 0, "past exchanges kept in the session (default 10)")
	flags.Bool("refine", false, "offer to refine the plan after it is printed (default on for terminals)")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	history := historyRuns(cfg, planHistoryRuns)
	if n, _ := flags.GetInt("history"); n > 0 {
		history = n
	}
	driver := newDriver(cfg, history, newLogger(cfg))

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	stdin, _ := cmd.InOrStdin().(*os.File)
	interactive := stdin != nil && isTerminal(stdin)

	fmt.Fprintln(out, "Welcome to the Travel Itinerary Generator! Please provide the following details: country name, budget, and number of days for itinerary planning.")
	destination, _ := flags.GetString("destination")
	if destination == "" {
		if destination, err = prompt(in, out, "Enter a location for a travel-related query: "); err != nil {
			return err
		}
	}
	budget, _ := flags.GetString("budget")
	if budget == "" {
		if budget, err = prompt(in, out, "Enter your budget (in USD or INR): "); err != nil {
			return err
		}
	}
	days, _ := flags.GetInt("days")
	if days == 0 {
		raw, err := prompt(in, out, "Enter the number of days for the itinerary: ")
		if err != nil {
			return err
		}
		if days, err = strconv.Atoi(raw); err != nil {
			days = -1
		}
	}
	interests, _ := flags.GetString("interests")

	var apiKey string
	if cfg.Model.APIKey == "" && interactive {
		if apiKey, err = promptPassword(stdin, out, "GROQ_API_KEY: "); err != nil {
			return err
		}
	}

	req := travel.TripRequest{
		Destination: destination,
		Budget:      budget,
		Days:        days,
		Interests:   interests,
		UseSearch:   true,
		MaxResults:  tools.DefaultMaxResults,
		APIKey:      apiKey,
		SessionID:   planSessionID,
	}
	if err := printPlan(cmd, driver, req); err != nil {
		return err
	}

	refine, _ := flags.GetBool("refine")
	if !refine && !interactive {
		return nil
	}
	for {
		text, err := prompt(in, out, "Refine the plan (empty line to finish): ")
		if err != nil || text == "" {
			return nil
		}
		req.Refinement = text
		if err := printPlan(cmd, driver, req); err != nil {
			return err
		}
	}
}

func printPlan(cmd *cobra.Command, driver *travel.Driver, req travel.TripRequest) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Planning your trip…")
	res, err := driver.Run(cmd.Context(), req)
	if err != nil {
		var failure *travel.Failure
		if errors.As(err, &failure) {
			return errors.New(failure.Message)
		}
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Content)
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "\nNote: %s\n", w)
	}
	fmt.Fprintln(out)
	return nil
}

// prompt reads one trimmed line. EOF after some input still returns the input.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a secret from the terminal without echoing.
func promptPassword(f *os.File, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
