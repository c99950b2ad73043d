// =============================================================================
// Orchestrator demo 入口
// =============================================================================
// 一个最小可运行示例：注册两个内存 provider，通过 Orchestrator 发起一次
// chat 调用，并在第一个 provider 失败时回退到第二个。
//
// 使用方法:
//
//	orchestrator-demo chat --model gpt-4o
//	orchestrator-demo version
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/llmrouter/core/llm"
	"github.com/llmrouter/core/llm/config"
	"github.com/llmrouter/core/llm/providers/mock"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	model := fs.String("model", "demo-model", "logical model name to resolve")
	prompt := fs.String("prompt", "hello", "user message content")
	_ = fs.Parse(args)

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	primary := mock.New("primary", "response from primary")
	backup := mock.New("backup", "response from backup")

	registry := llm.NewRegistry(config.PolicyFirst)
	registry.Add("primary", *model, llm.PriceTable{InputPer1K: 0.001, OutputPer1K: 0.002})

	orch := llm.New(config.Config{}, registry, map[string]llm.Provider{"primary": primary}, llm.WithLogger(logger))

	backupRegistry := llm.NewRegistry(config.PolicyFirst)
	backupRegistry.Add("backup", *model, llm.PriceTable{InputPer1K: 0.001, OutputPer1K: 0.002})
	backupOrch := llm.New(config.Config{}, backupRegistry, map[string]llm.Provider{"backup": backup}, llm.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := llm.Fallback(ctx, []llm.FallbackRequest{
		{Orchestrator: orch, Request: &llm.ChatRequest{Model: *model, Messages: []llm.Message{{Role: llm.RoleUser, Content: *prompt}}}},
		{Orchestrator: backupOrch, Request: &llm.ChatRequest{Model: *model, Messages: []llm.Message{{Role: llm.RoleUser, Content: *prompt}}}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("[%s/%s] %s (cost $%.6f)\n", resp.Provider, resp.Model, resp.Content, resp.CostUSD)
}

func printVersion() {
	fmt.Printf("orchestrator-demo %s (built %s)\n", Version, BuildTime)
}

func printUsage() {
	fmt.Println(`orchestrator-demo — minimal multi-provider chat orchestrator demo

Usage:
  orchestrator-demo chat [--model NAME] [--prompt TEXT]
  orchestrator-demo version`)
}
