package main

import (
	"fmt"

	"github.com/fwojciec/kbase"
)

// Run executes the collections command.
func (c *CollectionsCmd) Run(deps *Dependencies) error {
	collections, err := deps.Store.Collections(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbase.ErrorMessage(err))
		return err
	}

	if len(collections) == 0 {
		fmt.Fprintln(deps.Stdout, "No collections found. Use 'kbase ingest' to create one.")
		return nil
	}

	for _, col := range collections {
		count, err := deps.Store.Count(deps.Ctx, col.Name)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", kbase.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %d chunks\n", col.Name, count)
	}

	return nil
}
