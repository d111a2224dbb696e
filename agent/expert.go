package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Expert represents a chat with a business expert.
type Expert struct {
	Name        string
	Description string
	ModelName   string
	Config      *genai.GenerateContentConfig
	Library     Library
	chat        *genai.Chat
}

// Start opens the underlying chat.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and resolves its function calls until a
// text response comes back.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from expert %s", e.Name)
	}
	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		// call the tool and feed the result back, until a real response
		fresp := e.Library(ctx, part0.FunctionCall)
		return e.Ask(ctx, &genai.Part{FunctionResponse: fresp})
	}
	return resp.Candidates[0].Content, nil
}

// Declaration returns the function declaration to ask this expert, so a
// facilitator can treat experts as tools.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {
					Type:        genai.TypeString,
					Description: "The question to ask the expert.",
				},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "Expert's response.",
		},
	}
}

// Call asks this expert the question passed as argument.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	fresp := &genai.FunctionResponse{
		ID:       id,
		Name:     e.Name,
		Response: map[string]any{},
	}

	question, ok := args["question"].(string)
	if !ok {
		fresp.Response["error"] = fmt.Sprintf("invalid type %T for 'question', expected string", args["question"])
		return fresp
	}

	response, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		fresp.Response["error"] = fmt.Sprintf("asking the expert failed: %v", err)
		return fresp
	}
	fresp.Response["output"] = response.Parts[0].Text
	return fresp
}
