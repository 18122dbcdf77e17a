package main

import (
	"context"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/games"
)

func TestTally(t *testing.T) {
	engine, err := fairness.New("sim-key")
	require.NoError(t, err)

	res, err := tally(context.Background(), engine, "spin", nil, 1001, 4)
	require.NoError(t, err)
	assert.Equal(t, 1001, res.rounds)
	assert.Equal(t, 1001, res.values)
	for v := range res.counts {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 36)
	}
	assert.Greater(t, res.chiSquare(), 0.0)

	res, err = tally(context.Background(), engine, "keno", games.Params{"picks": 5}, 100, 3)
	require.NoError(t, err)
	assert.Equal(t, 500, res.values)
	keys := res.keys()
	assert.IsIncreasing(t, keys)

	_, err = tally(context.Background(), engine, "roulette-xyz", nil, 10, 2)
	assert.ErrorIs(t, err, fairness.ErrUnsupportedGameType)

	_, err = tally(context.Background(), engine, "spin", nil, 0, 2)
	assert.Error(t, err)
}

func TestCLIParses(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"generate", "slot", "-p", "reels=5", "--server-key=abc"})
	require.NoError(t, err)
	assert.Equal(t, "generate <game>", ctx.Command())
	assert.Equal(t, "slot", cli.Generate.Game)
	assert.Equal(t, 5, cli.Generate.Param["reels"])
	assert.Equal(t, "abc", cli.Generate.Engine.ServerKey)

	_, err = parser.Parse([]string{"simulate", "keno", "-n", "50", "--derivation=single"})
	require.NoError(t, err)
	assert.Equal(t, 50, cli.Simulate.Rounds)
	assert.Equal(t, "single", cli.Simulate.Engine.Derivation)

	_, err = parser.Parse([]string{"serve", "--signer=rsa"})
	assert.Error(t, err)
}

func TestToParams(t *testing.T) {
	params := toParams(map[string]int{"rows": 12})
	rows, err := params.Int("rows", 8)
	require.NoError(t, err)
	assert.Equal(t, 12, rows)

	assert.Empty(t, toParams(nil))
}
