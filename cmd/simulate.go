package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"time"

	"BlackjackAdvisor/config"
	"BlackjackAdvisor/internal/game/dealer"
	"BlackjackAdvisor/internal/game/engine"
	"BlackjackAdvisor/internal/history"
	"BlackjackAdvisor/internal/utils"

	"github.com/spf13/cobra"
)

var (
	simRounds int
	simSeed   int64
	simDecks  int

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Deal a seeded shoe through the engine and print the results as JSON",
		RunE:  runSimulate,
	}
)

func init() {
	simulateCmd.Flags().IntVarP(&simRounds, "rounds", "r", 100, "hands to deal")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "shoe shuffle seed")
	simulateCmd.Flags().IntVarP(&simDecks, "decks", "d", 0, "decks in the shoe, 0 keeps advisor.deckCount")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(config.C.Log.Level, os.Stderr)

	opts := config.C.EngineOptions()
	opts.SessionID = "simulation"
	if simDecks > 0 {
		opts.DeckCount = simDecks
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	recorder := history.NewService(history.NewMemoryRepo(), simRounds*8+history.DefaultBuffer, logger, nil)
	recCtx, stopRecorder := context.WithCancel(context.Background())
	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		recorder.Run(recCtx)
	}()

	start := time.Now()
	var sim *dealer.Simulator
	clock := func() time.Time {
		if sim == nil {
			return start
		}
		return sim.Now()
	}
	eng, err := engine.New(opts, engine.Deps{Logger: logger, Publisher: recorder, Clock: clock})
	if err != nil {
		stopRecorder()
		return err
	}

	d := dealer.NewDealer(simSeed)
	d.NewShoe(opts.DeckCount)
	sim = dealer.NewSimulator(dealer.Config{Rounds: simRounds, Start: start}, d, eng, logger)
	stats, runErr := sim.Run(ctx)

	stopRecorder()
	<-recDone
	summary, err := recorder.Summary(context.Background(), opts.SessionID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"seed":    simSeed,
		"decks":   opts.DeckCount,
		"stats":   stats,
		"summary": summary,
	}); err != nil {
		return err
	}
	return runErr
}
