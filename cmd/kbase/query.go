package main

import (
	"fmt"

	"github.com/fwojciec/kbase"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	results, err := deps.Searcher.Search(deps.Ctx, c.Name, c.Query, c.TopK)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, kbase.FormatResults(results))
	return nil
}
