package main

import (
	"context"
	"flag"
	"fmt"
)

func initBlockCommand(cmd *flag.FlagSet) {
}

func runBlockCommand(ctx context.Context, store AccountStore, username string) error {
	if err := store.SetBlocked(ctx, username, true); err != nil {
		return err
	}
	fmt.Printf("Blocked %s: future logins will be denied.\n", username)
	return nil
}

func initUnblockCommand(cmd *flag.FlagSet) {
}

func runUnblockCommand(ctx context.Context, store AccountStore, username string) error {
	if err := store.SetBlocked(ctx, username, false); err != nil {
		return err
	}
	fmt.Printf("Unblocked %s.\n", username)
	return nil
}
