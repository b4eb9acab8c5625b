package genai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the chat model used for all artifact generation.
const DefaultModel = openai.ChatModelGPT4o

// Client issues single generation calls against the hosted service. It is
// credential-agnostic: the credential to use is passed per call so the
// invoker can rotate between attempts.
type Client struct {
	model   string
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel overrides the chat model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at an alternative API endpoint, e.g. a
// proxy or a test server.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// NewClient builds a generation client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends prompt (and an optional system instruction) to the
// generation service with the given credential and returns the text of the
// first choice. An empty or whitespace-only completion is reported as
// KindInvalidResponse so the invoker treats it as transient.
func (c *Client) Generate(ctx context.Context, credential, prompt, system string) (string, error) {
	reqOpts := []option.RequestOption{option.WithAPIKey(credential)}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	api := openai.NewClient(reqOpts...)

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    c.model,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewError(KindInvalidResponse, nil)
	}
	return resp.Choices[0].Message.Content, nil
}
