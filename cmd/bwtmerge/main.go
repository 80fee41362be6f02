// Command bwtmerge is the CLI front-end for the merge engine: it reads
// two or more run-length encoded BWTs, merges them pairwise in argument
// order, and writes the result, per spec.md §6's CLI surface.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds the command tree and executes it, returning the process
// exit code. Kept separate from main so tests can drive it without
// exiting the test binary.
func run(args []string) int {
	t := New()
	t.Root.SetArgs(args)
	if err := t.Root.Execute(); err != nil {
		return 1
	}
	return 0
}
