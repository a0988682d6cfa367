package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"

	"github.com/golden-vcr/twitter-auth/internal/users"
)

type Config struct {
	DatabasePath string `env:"DATABASE_PATH" default:"twitter-auth.db"`
}

// AccountStore is the subset of the user store that account commands operate on
type AccountStore interface {
	Get(ctx context.Context, username string) (*users.User, error)
	SetBlocked(ctx context.Context, username string, blocked bool) error
	SetActivation(ctx context.Context, username string, activation string) error
}

type Command struct {
	name     string
	initFunc func(cmd *flag.FlagSet)
	runFunc  func(ctx context.Context, store AccountStore, username string) error
}

var commands = []Command{
	{"show", initShowCommand, runShowCommand},
	{"block", initBlockCommand, runBlockCommand},
	{"unblock", initUnblockCommand, runUnblockCommand},
	{"activate", initActivateCommand, runActivateCommand},
	{"require-activation", initRequireActivationCommand, runRequireActivationCommand},
}

var username string

func main() {
	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Parse the subcommand that we want to run, or print usage if no match
	var command *Command
	commandName := ""
	if len(os.Args) > 1 {
		commandName = os.Args[1]
	}
	for i := range commands {
		if commands[i].name == commandName {
			command = &commands[i]
			break
		}
	}
	if command == nil {
		commandNames := make([]string, 0, len(commands))
		for i := range commands {
			commandNames = append(commandNames, commands[i].name)
		}
		log.Fatalf("Usage: accounts [%s] -username twitter/<screen_name>", strings.Join(commandNames, "|"))
	}

	// Initialize command-line flags for the chosen subcommand
	flagSet := flag.NewFlagSet(command.name, flag.ExitOnError)
	flagSet.StringVar(&username, "username", "", "Local username of the account, e.g. twitter/BigJoeBob")
	command.initFunc(flagSet)
	if err := flagSet.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Parse error: %v", err)
	}
	if username == "" {
		log.Fatalf("-username is required")
	}

	store, err := users.Open(config.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open user database: %v", err)
	}
	defer store.Close()

	if err := command.runFunc(context.Background(), store, username); err != nil {
		log.Fatalf("%s failed: %v", command.name, err)
	}
}
