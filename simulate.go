package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

var (
	simLeagueFile   string
	simPlayersFile  string
	simFixturesFile string
	simTeams        int
	simRounds       int
	simHuman        int
	simSeed         uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one complete draft offline and print the results",
	Long: `Run a full snake draft with every team (the human slot included) picking
through the strategy engine, then print the results as JSON.

Example usage:
  fantasy-draft simulate --teams 12 --rounds 15 --seed 7
  fantasy-draft simulate --league league.yaml --players players.json`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simLeagueFile, "league", "", "League YAML file (default league when empty)")
	f.StringVar(&simPlayersFile, "players", "", "Player pool JSON file (built-in pool when empty)")
	f.StringVar(&simFixturesFile, "fixtures", "", "Fixtures JSON file")
	f.IntVar(&simTeams, "teams", 0, "Override the league's team count")
	f.IntVar(&simRounds, "rounds", 0, "Override the league's round count")
	f.IntVar(&simHuman, "human", 0, "Override the human team index (-1 for none)")
	f.Uint64Var(&simSeed, "seed", 0, "Seed for reproducible AI picks")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger.Init()

	league, err := config.LoadLeague(simLeagueFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("teams") {
		league.Teams = simTeams
	}
	if cmd.Flags().Changed("rounds") {
		league.Rounds = simRounds
	}
	if cmd.Flags().Changed("human") {
		league.HumanIndex = simHuman
	}
	if err := league.Validate(); err != nil {
		return err
	}

	var pool []models.Player
	if simPlayersFile != "" {
		if pool, err = dal.LoadPlayersFile(simPlayersFile); err != nil {
			return err
		}
	} else if pool, err = dal.NewMemoryDAL().ListPlayers(); err != nil {
		return err
	}
	var fixtureRows []models.Fixture
	if simFixturesFile != "" {
		if fixtureRows, err = dal.LoadFixturesFile(simFixturesFile); err != nil {
			return err
		}
	}

	sess, err := draft.New(draft.Config{
		Teams:       league.BuildTeams(),
		Pool:        pool,
		Rules:       league.Scoring,
		TotalRounds: league.Rounds,
		HumanIndex:  league.HumanIndex,
		Seed:        simSeed,
		Simulation:  true,
		Fixtures:    fixtureRows,
		FromWeek:    league.FromWeek,
	})
	if err != nil {
		return err
	}
	results, err := sess.CompleteSimulation()
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
