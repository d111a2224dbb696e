package agent

import (
	"context"
	"fmt"

	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/miluoalbert/invest-master/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Loader pulls the portfolio state as of a date, typically from the store.
type Loader func(ctx context.Context, on date.Date) (*invest.Book, error)

// newFacilitator creates the orchestrating expert. It sees the others as
// tools and devises which one to ask for each part of the user's request.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are at your service and keep context of your previous questions.

			The user is here primarily to understand his portfolio: what he holds,
			what he is really exposed to through his funds, and whether his
			allocation drifted from its targets.

			Devise a plan of questions to ask each expert and come up with the best
			response to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher creates the market research expert. It grounds its answers
// with Google Search.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is a market researcher,
		well aware of financial products and institutions and of
		the latest news about funds and companies.
		Ask the Researcher whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in financial markets. You can search and find anything
			related to financial institutions, companies, markets and funds.
			Leverage Google Search to ground your assertions in solid truth, and
			relate the latest news to the user's request.
		`}}},
		},
	}
}

// NewAnalyst creates the portfolio analyst expert. Its tools read the
// user's actual portfolio through the loader.
func NewAnalyst(load Loader) *Expert {
	lib := []Function{holdingsTool(load), exposureTool(load)}

	return &Expert{
		Name: "Analyst",
		Description: `This is the portfolio Analyst. He reads the user's ledger and
		market data to compute holdings, valuations and look-through exposure.
		Ask the Analyst anything about what the user actually owns.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the analyst of the user's investment portfolio.
			Use the available tools to get the portfolio's holdings on a date and
			the look-through exposure of any fund the user holds.
			Other experts might ask you questions in approximate language; pardon
			them and figure out what they meant.
		`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements Function with plain values.
type Func struct {
	Decl *genai.FunctionDeclaration
	Run  func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Run(ctx, id, args)
}

var dateParam = &genai.Schema{
	Type:        genai.TypeString,
	Description: "The date of the report in YYYY-MM-DD format. Today is the default.",
}

func holdingsTool(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Holdings",
			Description: `Holdings values the whole portfolio on a date: every security
			position with its quantity, price and value, every cash balance, and the
			total, all in the base currency.`,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"date": dateParam},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of the portfolio holdings.",
			},
		},
		Run: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Holdings", func(on date.Date, book *invest.Book) (string, error) {
				valuation, err := book.System.Valuation(on)
				if err != nil {
					return "", err
				}
				return renderer.HoldingMarkdown(valuation), nil
			})(ctx, args, load)
		},
	}
}

func exposureTool(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Exposure",
			Description: `Exposure decomposes a fund into its ultimate underlyings with
			their effective weights, resolving nested funds recursively.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"ticker": {
						Type:        genai.TypeString,
						Description: "The ticker of the fund to decompose.",
					},
					"date": dateParam,
				},
				Required: []string{"ticker"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of the fund's look-through exposure.",
			},
		},
		Run: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			ticker, _ := args["ticker"].(string)
			return respond(id, "Exposure", func(on date.Date, book *invest.Book) (string, error) {
				if ticker == "" {
					return "", fmt.Errorf("argument 'ticker' is required")
				}
				resolver := invest.NewResolver(book.Compositions, book.System.Market, 0)
				exposures, err := resolver.Resolve(ticker, on)
				if err != nil {
					return "", err
				}
				return renderer.ExposureMarkdown(exposures), nil
			})(ctx, args, load)
		},
	}
}

// respond wraps a report function into the load/execute/answer plumbing
// every tool shares.
func respond(id, name string, report func(on date.Date, book *invest.Book) (string, error)) func(context.Context, map[string]any, Loader) *genai.FunctionResponse {
	return func(ctx context.Context, args map[string]any, load Loader) *genai.FunctionResponse {
		fresp := &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{}}

		on, err := parseDate(args)
		if err != nil {
			fresp.Response["error"] = err.Error()
			return fresp
		}
		book, err := load(ctx, on)
		if err != nil {
			fresp.Response["error"] = fmt.Sprintf("could not load portfolio: %v", err)
			return fresp
		}
		output, err := report(on, book)
		if err != nil {
			fresp.Response["error"] = err.Error()
			return fresp
		}
		fresp.Response["output"] = output
		return fresp
	}
}

func parseDate(args map[string]any) (date.Date, error) {
	idate, hasDate := args["date"]
	if !hasDate {
		return date.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
	}
	on, err := date.Parse(sdate)
	if err != nil {
		return date.Date{}, fmt.Errorf("argument 'date' must be a YYYY-MM-DD date, got %q", sdate)
	}
	return on, nil
}
