package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

var showTokens bool

func initShowCommand(cmd *flag.FlagSet) {
	cmd.BoolVar(&showTokens, "show-tokens", false, "Include the stored Twitter access token pair in output")
}

func runShowCommand(ctx context.Context, store AccountStore, username string) error {
	u, err := store.Get(ctx, username)
	if err != nil {
		return err
	}
	if !showTokens {
		for _, name := range []string{twitterauth.ParamTokenKey, twitterauth.ParamTokenSecret} {
			if _, ok := u.Params[name]; ok {
				u.Params[name] = "********"
			}
		}
	}
	pretty, err := json.MarshalIndent(u, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s\n", pretty)
	return nil
}
