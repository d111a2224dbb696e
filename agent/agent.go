// Package agent implements the interactive AI assistant: a facilitator
// model orchestrating domain experts, each a chat with its own tools.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
}

// New creates an Agent over the given experts. Output goes to w (typically
// os.Stdout), user input comes from r (typically os.Stdin).
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start opens the underlying chats for every expert.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// Run starts the interactive REPL session. Initial prompts are consumed
// before reading from the user.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to the invest assistant. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, content.Parts[0].Text)
	}
}
