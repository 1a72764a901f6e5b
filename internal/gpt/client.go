// Package gpt answers learner questions through the OpenAI chat API.
package gpt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "あなたはプロンプトエンジニアリングの講師です。" +
	"学習者の質問に日本語で、具体例を交えて簡潔に答えてください。" +
	"プロンプトエンジニアリングやAIの活用と無関係な質問には、学習内容に関する質問をするよう丁寧に促してください。"

var ErrEmptyCompletion = errors.New("empty completion")

type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewClient(apiKey string) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey))
}

// NewClientWithConfig builds a client on an explicit API configuration.
func NewClientWithConfig(cfg openai.ClientConfig) *Client {
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     openai.GPT4oMini,
		maxTokens: 1000,
	}
}

func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

func (c *Client) WithMaxTokens(n int) *Client {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// Complete returns the model's answer to question.
func (c *Client) Complete(ctx context.Context, question string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyCompletion
	}

	return answer, nil
}
