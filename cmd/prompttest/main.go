package main

// Dev harness for prompt iteration:
//   go run ./cmd/prompttest -interview ./interview.json

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/llm/anthropic"
	"bookstudio-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	interviewPath := flag.String("interview", "", "Path to interview responses JSON ([{question, answer}])")
	model := flag.String("model", cfg.LLMModel, "Model name")
	outPath := flag.String("out", "", "Path to write raw model output (optional)")
	flag.Parse()

	if strings.TrimSpace(*interviewPath) == "" {
		exitErr("interview path is required")
	}

	raw, err := os.ReadFile(*interviewPath)
	if err != nil {
		exitErr(fmt.Sprintf("read interview: %v", err))
	}

	var responses []llm.InterviewResponse
	if err := json.Unmarshal(raw, &responses); err != nil {
		exitErr(fmt.Sprintf("parse interview: %v", err))
	}

	client, err := anthropic.NewClient(anthropic.Config{
		Model:   *model,
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
		Timeout: time.Duration(cfg.AnthropicTimeoutSeconds) * time.Second,
	})
	if err != nil {
		exitErr(err.Error())
	}

	prompt := llm.BuildBlueprintPrompt(responses)
	completion, err := client.Generate(context.Background(), llm.GenerateInput{
		System:    prompt.System,
		User:      prompt.User,
		MaxTokens: 4096,
	})
	if err != nil {
		exitErr(fmt.Sprintf("generate: %v", err))
	}

	if strings.TrimSpace(*outPath) != "" {
		if err := os.WriteFile(*outPath, []byte(completion.Text), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	bp, err := blueprints.ParseBlueprint(completion.Text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blueprint validation failed: %v\n", err)
		fmt.Println(completion.Text)
		os.Exit(1)
	}

	pretty, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("marshal blueprint: %v", err))
	}
	fmt.Println(string(pretty))
	if completion.Usage != nil {
		fmt.Fprintf(os.Stderr, "tokens: in=%d out=%d\n", completion.Usage.InputTokens, completion.Usage.OutputTokens)
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
