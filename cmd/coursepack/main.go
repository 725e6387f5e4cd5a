package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errContentInvalid) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("coursepack: "+err.Error()))
		}
		os.Exit(1)
	}
}
