package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/zurustar/rbgn/pkg/app"
)

func main() {
	application := app.New(os.Stdin, os.Stdout, os.Stderr)
	if err := application.Run(os.Args[1:]); err != nil {
		fd := os.Stderr.Fd()
		printError(color.Error, err, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
		os.Exit(1)
	}
}

// printError writes the top-level error, in red when w is a terminal.
func printError(w io.Writer, err error, tty bool) {
	c := color.New(color.FgRed)
	if tty {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintln(w, c.Sprintf("Error: %v", err))
}
