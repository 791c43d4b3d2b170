package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/domino14/fairway/assignment"
	"github.com/domino14/fairway/config"
	"github.com/domino14/fairway/distributions"
	"github.com/domino14/fairway/planner"
	"github.com/domino14/fairway/report"
	"github.com/domino14/fairway/roster"
	"github.com/domino14/fairway/tournament"
)

var (
	GitVersion string

	cfg        = config.New()
	configFile string
)

func setupLogger(level string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		output.FormatLevel = func(i any) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		}
		w = output
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	return logger
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	if err := cfg.Load(cmd.Flags(), configFile); err != nil {
		return config.Settings{}, err
	}
	logger := setupLogger(cfg.GetString(config.ConfigKeyLogLevel))
	cmd.SetContext(logger.WithContext(cmd.Context()))
	s, err := cfg.Settings()
	if err != nil {
		return config.Settings{}, err
	}
	logger.Debug().Interface("settings", s).Msg("loaded-config")
	return s, nil
}

func newPlanner(s config.Settings) (*planner.Planner, error) {
	ds, err := distributions.LoadCSVDataset(s.Distributions)
	if err != nil {
		return nil, err
	}
	strategies, err := assignment.ByNames(s.Strategies, s.Holes)
	if err != nil {
		return nil, err
	}
	var opts []planner.Option
	if len(strategies) > 0 {
		opts = append(opts, planner.WithStrategies(strategies...))
	}
	return planner.New(s, ds, opts...)
}

func write(w io.Writer, s config.Settings, t *tournament.Tournament, sum report.Summary) error {
	if s.Output == "yaml" {
		sum.Settings = &s
		return report.WriteYAML(w, t, sum)
	}
	if err := report.WriteText(w, t, sum); err != nil {
		return err
	}
	if s.Histogram {
		return report.WriteHistograms(w, t, 10)
	}
	return nil
}

func estimate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	recs, err := roster.FileProvider{Path: args[0], WithTeams: true}.Records()
	if err != nil {
		return err
	}
	p, err := newPlanner(s)
	if err != nil {
		return err
	}
	est, err := p.Estimate(cmd.Context(), recs)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), s, est.Tournament, report.Summary{
		Fairness: est.Fairness, FairEnough: est.FairEnough,
	})
}

func assign(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	recs, err := roster.FileProvider{Path: args[0]}.Records()
	if err != nil {
		return err
	}
	p, err := newPlanner(s)
	if err != nil {
		return err
	}
	a, err := p.CreateTeams(cmd.Context(), recs)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), s, a.Tournament, report.Summary{
		Strategy: a.Strategy, Fairness: a.Fairness, FairEnough: a.FairEnough, Swaps: a.Swaps,
	})
}

func synth(cmd *cobra.Command, _ []string) error {
	maxHandicap, _ := cmd.Flags().GetInt("max-handicap")
	maxScore, _ := cmd.Flags().GetInt("max-score")
	par, _ := cmd.Flags().GetInt("par")
	d, err := distributions.Synthetic(maxHandicap, maxScore, par)
	if err != nil {
		return err
	}
	return distributions.WriteCSV(cmd.OutOrStdout(), d)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fairway",
		Short:         "Simulate best-ball golf games and build fair teams",
		Version:       GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./fairway.yaml or ~/fairway.yaml)")
	pf.Int(config.ConfigKeyIterations, 500, "games to simulate per evaluation")
	pf.Int(config.ConfigKeyBestBalls, 1, "best scores per hole counted for a team")
	pf.Int(config.ConfigKeyHoles, 18, "holes per round")
	pf.Float64(config.ConfigKeyAllowance, 100, "handicap allowance in percent")
	pf.BoolP(config.ConfigKeyFullHandicap, "f", false, "use the full handicap (allowance 100)")
	pf.BoolP(config.ConfigKeyNoHandicap, "n", false, "ignore handicaps (allowance 0)")
	pf.Float64(config.ConfigKeyFairnessTolerance, 0.1, "largest acceptable win probability spread")
	pf.Float64(config.ConfigKeySwapPercentile, 0.25, "players at or below this win probability percentile are swap candidates")
	pf.Int(config.ConfigKeyMaxPasses, 0, "swap passes before giving up (0 means until no swap helps)")
	pf.Uint64(config.ConfigKeySeed, 0, "random seed (0 picks one)")
	pf.Int(config.ConfigKeyThreads, 1, "simulation threads")
	pf.Int(config.ConfigKeyCacheSize, 256, "cached swap evaluations (0 disables)")
	pf.String(config.ConfigKeyDistributions, "", "score distributions CSV")
	pf.String(config.ConfigKeyLogLevel, "warn", "debug, info or warn")
	pf.String(config.ConfigKeyOutput, "text", "text or yaml")
	pf.Bool(config.ConfigKeyHistogram, false, "plot simulated game scores")

	estimateCmd := &cobra.Command{
		Use:   "estimate PLAYERS.csv",
		Short: "Estimate the chances of teams given in the roster",
		Args:  cobra.ExactArgs(1),
		RunE:  estimate,
	}
	assignCmd := &cobra.Command{
		Use:   "assign PLAYERS.csv",
		Short: "Split the players in the roster into fair teams",
		Args:  cobra.ExactArgs(1),
		RunE:  assign,
	}
	assignCmd.Flags().Int(config.ConfigKeyTeams, 2, "number of teams")
	assignCmd.Flags().Bool(config.ConfigKeyOptimize, false, "swap players after the best strategy")
	assignCmd.Flags().StringSlice(config.ConfigKeyStrategies, nil,
		"assignment strategies to try, in order (default all of "+
			strings.Join(lo.Map(assignment.Strategies(), func(s assignment.Strategy, _ int) string { return s.Name }), ", ")+
			"; WeakestFirstByWinProbabilityOnHole-<hole> is also accepted)")

	distCmd := &cobra.Command{
		Use:   "distributions",
		Short: "Work with score distribution tables",
	}
	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic score distribution table as CSV",
		Args:  cobra.NoArgs,
		RunE:  synth,
	}
	synthCmd.Flags().Int("max-handicap", 36, "largest handicap row")
	synthCmd.Flags().Int("max-score", 10, "largest hole score")
	synthCmd.Flags().Int("par", 4, "par of the modelled hole")
	distCmd.AddCommand(synthCmd)

	root.MarkFlagsMutuallyExclusive(config.ConfigKeyFullHandicap, config.ConfigKeyNoHandicap)
	root.AddCommand(estimateCmd, assignCmd, distCmd)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fairway:", err)
		stop()
		os.Exit(1)
	}
}
