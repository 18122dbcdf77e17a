package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MJE43/pf-fairness-engine/internal/config"
	"github.com/MJE43/pf-fairness-engine/internal/games"
)

// GenerateCmd prints a fresh signed record and its token
type GenerateCmd struct {
	Engine config.Engine  `embed:""`
	Game   string         `arg:"" help:"Game to generate (slot, keno, plinko, spin)."`
	Param  map[string]int `short:"p" help:"Game parameter as key=value, e.g. -p reels=5."`
}

func (c *GenerateCmd) Run() error {
	engine, err := c.Engine.NewEngine(c.Engine.Keys.Keyring())
	if err != nil {
		return err
	}

	rec, err := engine.Generate(c.Game, toParams(c.Param))
	if err != nil {
		return err
	}
	token, err := engine.VerificationData(rec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}
	fmt.Printf("token: %s\n", token)
	return nil
}

func toParams(m map[string]int) games.Params {
	params := make(games.Params, len(m))
	for k, v := range m {
		params[k] = v
	}
	return params
}
