// Command inspect prints per-module dispatch outcome counts from a
// simd index database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"overseer.ai/internal/persistence/indexdb"
)

func main() {
	db := flag.String("db", "./data/worlds/world_1/index.db", "path to index.db")
	flag.Parse()

	logger := log.New(os.Stderr, "[inspect] ", 0)

	idx, err := indexdb.Open(*db)
	if err != nil {
		logger.Fatalf("open: %v", err)
	}
	defer idx.Close()

	rows, err := idx.Summary()
	if err != nil {
		logger.Fatalf("summary: %v", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tOUTCOME\tCOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.ModuleID, r.Outcome, r.Count)
	}
	tw.Flush()
}
