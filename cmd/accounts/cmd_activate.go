package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
)

var activationToken string

func initActivateCommand(cmd *flag.FlagSet) {
}

func runActivateCommand(ctx context.Context, store AccountStore, username string) error {
	if err := store.SetActivation(ctx, username, ""); err != nil {
		return err
	}
	fmt.Printf("Activated %s.\n", username)
	return nil
}

func initRequireActivationCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&activationToken, "token", "", "Activation token to record; a random one is generated if empty")
}

func runRequireActivationCommand(ctx context.Context, store AccountStore, username string) error {
	token := activationToken
	if token == "" {
		bytes := make([]byte, 16)
		if _, err := rand.Read(bytes); err != nil {
			return err
		}
		token = hex.EncodeToString(bytes)
	}
	if err := store.SetActivation(ctx, username, token); err != nil {
		return err
	}
	fmt.Printf("%s must now be activated before logging in (activation token: %s).\n", username, token)
	return nil
}
