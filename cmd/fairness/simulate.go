package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MJE43/pf-fairness-engine/internal/config"
	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/games"
)

// SimulateCmd generates many records and prints how often each value appears
type SimulateCmd struct {
	Engine  config.Engine  `embed:""`
	Game    string         `arg:"" help:"Game to simulate."`
	Param   map[string]int `short:"p" help:"Game parameter as key=value."`
	Rounds  int            `short:"n" default:"10000" help:"Number of results to generate."`
	Workers int            `default:"4" help:"Concurrent generators."`
}

func (c *SimulateCmd) Run() error {
	engine, err := c.Engine.NewEngine(c.Engine.Keys.Keyring())
	if err != nil {
		return err
	}

	t, err := tally(context.Background(), engine, c.Game, toParams(c.Param), c.Rounds, c.Workers)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d rounds, %d values\n", c.Game, t.rounds, t.values)
	fmt.Printf("%8s %10s %8s\n", "value", "count", "share")
	for _, v := range t.keys() {
		fmt.Printf("%8d %10d %7.3f%%\n", v, t.counts[v], 100*float64(t.counts[v])/float64(t.values))
	}
	fmt.Printf("chi-square vs uniform over %d observed values: %.2f\n", len(t.counts), t.chiSquare())
	return nil
}

type tallyResult struct {
	counts map[int]int
	rounds int
	values int
}

func (t tallyResult) keys() []int {
	keys := make([]int, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (t tallyResult) chiSquare() float64 {
	if len(t.counts) == 0 {
		return 0
	}
	expected := float64(t.values) / float64(len(t.counts))
	var chi float64
	for _, n := range t.counts {
		chi += math.Pow(float64(n)-expected, 2) / expected
	}
	return chi
}

// tally generates rounds records across workers and counts every outcome value.
func tally(ctx context.Context, engine *fairness.Engine, game string, params games.Params, rounds, workers int) (tallyResult, error) {
	if rounds <= 0 {
		return tallyResult{}, fmt.Errorf("rounds must be positive")
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result = tallyResult{counts: map[int]int{}}
	)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		share := rounds / workers
		if w < rounds%workers {
			share++
		}
		g.Go(func() error {
			local := map[int]int{}
			values := 0
			for i := 0; i < share; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := engine.Generate(game, params)
				if err != nil {
					return err
				}
				for _, v := range rec.Result.Ints() {
					local[v]++
					values++
				}
			}

			mu.Lock()
			defer mu.Unlock()
			for v, n := range local {
				result.counts[v] += n
			}
			result.rounds += share
			result.values += values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tallyResult{}, err
	}
	return result, nil
}
