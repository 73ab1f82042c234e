/*
Package main is the entry point for the reco-hub CLI.

reco-hub reads per-user product recommendations produced by a model, explains
each one with its top feature impacts, and records like/dislike feedback in a
local CSV or SQLite ledger.

Usage:
  reco-hub [command]

Available Commands:
  users       List users with recommendations
  resolve     Find a user id in free text
  show        Show a user's recommendations
  explain     Show feature impacts for one recommendation
  vote        Record feedback on a recommended product
  feedback    Show a user's recent feedback and satisfaction
  export      Export feedback as CSV
  check       Parse every record and report problems
  serve       Answer JSON requests on stdio
  config      Create or inspect the configuration file

Examples:
  # Recommendations above 0.5 with explanations
  reco-hub show ai730048 --min-score 0.5 --explain

  # Like a product
  reco-hub vote ai730048 152415 like
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/reco-hub/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
