package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/MJE43/pf-fairness-engine/internal/config"
)

// KeyCmd groups key management subcommands
type KeyCmd struct {
	Set    KeySetCmd    `cmd:"" help:"Store a signing key in the OS keyring"`
	Delete KeyDeleteCmd `cmd:"" help:"Remove the stored keys for a profile"`
}

// KeySetCmd stores a signing or HMAC key
type KeySetCmd struct {
	Keys     config.Keys `embed:""`
	Value    string      `arg:"" optional:"" help:"Key value. Read from stdin when omitted."`
	HMAC     bool        `name:"hmac" help:"Store the HMAC key instead of the signing key."`
	Generate bool        `help:"Generate a random key and print it."`
}

func (c *KeySetCmd) Run() error {
	value := c.Value
	switch {
	case c.Generate:
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		value = base64.RawURLEncoding.EncodeToString(b)
		fmt.Println(value)
	case value == "":
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read key: %w", err)
		}
		value = strings.TrimSpace(line)
	}

	keys := c.Keys.Keyring()
	if c.HMAC {
		return keys.SetHMACKey(c.Keys.KeyProfile, value)
	}
	return keys.SetSigningKey(c.Keys.KeyProfile, value)
}

// KeyDeleteCmd removes stored keys
type KeyDeleteCmd struct {
	Keys config.Keys `embed:""`
}

func (c *KeyDeleteCmd) Run() error {
	return c.Keys.Keyring().Delete(c.Keys.KeyProfile)
}
