// See: https://github.com/pressly/goose/blob/master/examples/go-migrations/main.go

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/laytan/tubescribe/internal/store"
	"github.com/rs/zerolog"
)

var (
	flags     = flag.NewFlagSet("goose", flag.ExitOnError)
	dbURL     = flags.String("db", "", "database url, defaults to $DATABASE_URL")
	authToken = flags.String("auth-token", "", "libSQL auth token, defaults to $TURSO_AUTH_TOKEN")
)

func main() {
	_ = godotenv.Load()

	flags.Usage = func() {
		log.Println("usage: goose [-db url] [-auth-token token] <command> [args...]")
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])
	args := flags.Args()

	if len(args) < 1 {
		flags.Usage()
		return
	}

	if *dbURL == "" {
		*dbURL = os.Getenv("DATABASE_URL")
	}
	if *authToken == "" {
		*authToken = os.Getenv("TURSO_AUTH_TOKEN")
	}

	db, err := store.Open(context.Background(), store.Options{
		URL:       *dbURL,
		AuthToken: *authToken,
		Log:       zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}),
	})
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v\n", err)
		}
	}()

	if err := db.Goose(args[0], args[1:]...); err != nil {
		log.Fatalf("goose %v: %v", args[0], err)
	}
}
