package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the Claude model used when the config names none.
const DefaultModel = "claude-3-5-sonnet-20241022"

const defaultMaxTokens = 4096

// maxToolTurns bounds the tool loop so a misbehaving model cannot spin the
// invocation forever.
const maxToolTurns = 8

const searchToolName = "search"

const planSystemPrompt = `You are a trip planning assistant. Given a goal and
the traveler's starting coordinates, produce a concrete, practical plan:
places to go, a sensible order, and rough timing. Use the search tool to find
points of interest near the traveler before committing to specifics. Keep the
final plan short and actionable.`

// SearchTool resolves the model's nearby-place lookups. The maps provider
// behind it is external; tests and offline runs use NoSearch.
type SearchTool interface {
	Search(ctx context.Context, query string, origin Coordinates) (string, error)
}

// NoSearch is a SearchTool for offline use: every lookup reports that no
// local results are available, and the model plans from general knowledge.
type NoSearch struct{}

// Search implements SearchTool.
func (NoSearch) Search(context.Context, string, Coordinates) (string, error) {
	return "no local search results available; plan from general knowledge", nil
}

// AnthropicClient is the production Client backed by the Anthropic API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	search    SearchTool
}

// NewAnthropicClient creates a Client that plans trips with Claude.
// An empty model selects DefaultModel; a nil search tool selects NoSearch.
func NewAnthropicClient(apiKey, model string, search SearchTool) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if search == nil {
		search = NoSearch{}
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultMaxTokens,
		search:    search,
	}, nil
}

// Invoke implements Client. It runs the model/tool loop in a goroutine and
// closes the returned channel when the loop ends for any reason.
func (c *AnthropicClient) Invoke(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, fmt.Errorf("goal is required")
	}

	out := make(chan Event)
	go c.run(ctx, req, out)
	return out, nil
}

func (c *AnthropicClient) run(ctx context.Context, req Request, out chan<- Event) {
	defer close(out)

	send := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(req))),
	}

	for turn := 1; turn <= maxToolTurns; turn++ {
		if turn == 1 {
			if !send(Thinking{Message: "Looking for ideas for: " + req.Goal}) {
				return
			}
		} else {
			if !send(Thinking{Message: "Weighing search results"}) {
				return
			}
		}

		msg, err := c.streamTurn(ctx, messages)
		if err != nil {
			send(Error{Message: fmt.Sprintf("model call failed: %v", err)})
			return
		}

		calls := toolCalls(msg)
		if len(calls) == 0 {
			send(Complete{Result: textOf(msg)})
			return
		}

		messages = append(messages, assistantParam(msg))

		results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
		for _, call := range calls {
			if !send(ToolCalling{Tool: searchToolName, Summary: call.Query}) {
				return
			}

			summary, err := c.search.Search(ctx, call.Query, req.Origin)
			if err != nil {
				results = append(results, anthropic.NewToolResultBlock(call.ID, err.Error(), true))
				summary = "search failed: " + err.Error()
			} else {
				results = append(results, anthropic.NewToolResultBlock(call.ID, summary, false))
			}
			if !send(ToolResult{Tool: searchToolName, Summary: summary}) {
				return
			}
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	send(Error{Message: fmt.Sprintf("agent exceeded %d tool turns without a plan", maxToolTurns)})
}

// streamTurn issues one streaming model call and returns the accumulated message.
func (c *AnthropicClient) streamTurn(ctx context.Context, messages []anthropic.MessageParam) (*anthropic.Message, error) {
	stream := c.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(c.maxTokens),
		System: anthropic.F([]anthropic.TextBlockParam{
			{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(planSystemPrompt),
			},
		}),
		Messages:   anthropic.F(messages),
		ToolChoice: anthropic.F(anthropic.ToolChoiceUnionParam(anthropic.ToolChoiceAutoParam{Type: anthropic.F(anthropic.ToolChoiceAutoTypeAuto)})),
		Tools: anthropic.F([]anthropic.ToolUnionUnionParam{
			anthropic.ToolParam{
				Name:        anthropic.F(searchToolName),
				Description: anthropic.F("Find points of interest near the traveler. Input: a short search query."),
				InputSchema: anthropic.F(any(searchToolSchema)),
			},
		}),
	})
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		message.Accumulate(stream.Current())
	}
	if stream.Err() != nil {
		return nil, stream.Err()
	}
	return &message, nil
}

//nolint:gochecknoglobals // static JSON schema for the search tool
var searchToolSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "What to search for, e.g. \"hiking trails\" or \"nearby spots\"",
		},
	},
	"required": []string{"query"},
}

// toolCall is one parsed search invocation from a model message.
type toolCall struct {
	ID    string
	Query string
	Input json.RawMessage
}

// searchInput is the expected shape of the search tool's input JSON.
type searchInput struct {
	Query string `json:"query"`
}

// toolCalls extracts search tool invocations from an accumulated message.
func toolCalls(msg *anthropic.Message) []toolCall {
	var calls []toolCall
	for _, block := range msg.Content {
		tu, ok := block.AsUnion().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		var in searchInput
		_ = json.Unmarshal(tu.Input, &in)
		calls = append(calls, toolCall{ID: tu.ID, Query: in.Query, Input: tu.Input})
	}
	return calls
}

// textOf concatenates the text blocks of an accumulated message.
func textOf(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsUnion().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// assistantParam rebuilds an accumulated message as a conversation turn so
// the tool loop can continue it.
func assistantParam(msg *anthropic.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, anthropic.NewTextBlock(b.Text))
		case anthropic.ToolUseBlock:
			blocks = append(blocks, anthropic.NewToolUseBlockParam(b.ID, b.Name, b.Input))
		}
	}
	return anthropic.NewAssistantMessage(blocks...)
}

// userPrompt renders the invocation request as the opening user message.
func userPrompt(req Request) string {
	if req.Origin.Zero() {
		return fmt.Sprintf("Plan this trip: %s", req.Goal)
	}
	return fmt.Sprintf("Plan this trip: %s\nStarting coordinates: %s", req.Goal, req.Origin)
}
