package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MJE43/pf-fairness-engine/internal/config"
	"github.com/MJE43/pf-fairness-engine/internal/fairness"
)

var errInvalidRecord = errors.New("record is not valid")

// VerifyCmd checks a token, optionally replaying the outcome
type VerifyCmd struct {
	Engine config.Engine  `embed:""`
	Token  string         `arg:"" help:"Verification token, or - to read it from stdin."`
	Game   string         `help:"Replay the outcome for this game as well."`
	Param  map[string]int `short:"p" help:"Game parameter used for the replay, e.g. -p picks=10."`
}

func (c *VerifyCmd) Run() error {
	engine, err := c.Engine.NewEngine(c.Engine.Keys.Keyring())
	if err != nil {
		return err
	}

	token := c.Token
	if token == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token: %w", err)
		}
		token = line
	}
	token = strings.TrimSpace(token)

	rec, err := fairness.DecodeToken(token)
	if err != nil {
		fmt.Println("invalid: token cannot be decoded")
		return errInvalidRecord
	}

	valid := engine.Verify(rec)
	if valid && c.Game != "" {
		valid = engine.VerifyOutcome(c.Game, toParams(c.Param), rec)
	}

	fmt.Printf("result:    %s\n", rec.Result)
	fmt.Printf("seed:      %s\n", rec.Seed)
	fmt.Printf("timestamp: %d\n", rec.Timestamp)
	if !valid {
		fmt.Println("invalid")
		return errInvalidRecord
	}
	fmt.Println("valid")
	return nil
}
