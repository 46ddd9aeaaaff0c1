// Command ingest loads IMDb and TMDb data into the catalog database.
//
// Usage:
//
//	ingest [--config path] [--dry-run] <reference|movies|persons|principals|tmdb|users|all|version>
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"os"

	"github.com/heartmarshall/cinemadb-backend/cmd/ingest/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
