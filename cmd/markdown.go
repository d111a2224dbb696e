package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// printMarkdown renders markdown to the terminal. When stdout is not a
// terminal (pipes, redirects) the raw markdown is printed instead.
func printMarkdown(md string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
