package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"paper-brain-be/internal/bootstrap"
	"paper-brain-be/internal/config"
	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/service"
	"paper-brain-be/pkg/pipeline"
)

// Interactive terminal client running the pipelines in-process. Useful for
// trying queries without the HTTP server or a database.
func main() {
	cfg := config.Load()
	container := bootstrap.NewContainer(nil, cfg)
	svc := container.SessionService

	title := color.New(color.FgCyan, color.Bold)
	prompt := color.New(color.FgGreen)
	errc := color.New(color.FgRed)
	dim := color.New(color.Faint)

	title.Println("Paper Brain CLI")
	dim.Println("Commands: search <query> | load <arxiv_id> [id...] | chat <message> | info | quit")

	ctx := context.Background()
	created, err := svc.Create(ctx, &dto.CreateSessionRequest{InitialQuery: "cli session"})
	if err != nil {
		errc.Printf("Failed to create session: %v\n", err)
		os.Exit(1)
	}
	dim.Printf("Session %s\n\n", created.SessionId)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "search":
			runSearch(ctx, svc, created.SessionId, arg)
		case "load":
			runLoad(ctx, svc, created.SessionId, strings.Fields(arg))
		case "chat":
			runChat(ctx, svc, created.SessionId, arg)
		case "info":
			runInfo(ctx, svc, created.SessionId)
		default:
			errc.Printf("Unknown command: %s\n", cmd)
		}
	}
}

func runSearch(ctx context.Context, svc service.ISessionService, sessionId, query string) {
	res, err := svc.Search(ctx, &dto.BrainSearchRequest{SessionId: sessionId, Query: query})
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	printSteps(res.ThinkingSteps)
	if res.Error != "" {
		color.Yellow(res.Error)
		return
	}
	for i, p := range res.Papers {
		score := 0.0
		if p.Score != nil {
			score = *p.Score
		}
		color.New(color.Bold).Printf("%2d. %s\n", i+1, p.Title)
		fmt.Printf("    %s | %s | score %.3f\n", p.ArxivId, p.Authors, score)
	}
	color.New(color.Faint).Printf("Searches remaining: %d\n", res.SearchesRemaining)
}

func runLoad(ctx context.Context, svc service.ISessionService, sessionId string, ids []string) {
	res, err := svc.LoadPapers(ctx, &dto.BrainLoadRequest{SessionId: sessionId, PaperIds: ids})
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	printSteps(res.ThinkingSteps)
	if res.Error != "" {
		color.Yellow(res.Error)
		return
	}
	for _, t := range res.LoadedPapers {
		color.Green("Loaded: %s", t)
	}
}

func runChat(ctx context.Context, svc service.ISessionService, sessionId, message string) {
	res, err := svc.SendMessage(ctx, &dto.ChatMessageRequest{SessionId: sessionId, Message: message})
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	printSteps(res.ThinkingSteps)
	if res.Error != "" {
		color.Yellow(res.Error)
		return
	}
	fmt.Println(res.Answer)
	for _, c := range res.Citations {
		color.New(color.Faint).Printf("  [%s, Page %d]\n", c.Paper, c.Page)
	}
	color.New(color.Faint).Printf("Messages remaining: %d\n", res.MessagesRemaining)
}

func runInfo(ctx context.Context, svc service.ISessionService, sessionId string) {
	res, err := svc.Info(ctx, sessionId)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	fmt.Printf("Session:  %s\n", res.SessionId)
	fmt.Printf("Searches: %d used, %d remaining\n", res.SearchesUsed, res.QuotaStatus.Search.Remaining)
	fmt.Printf("Messages: %d used, %d remaining\n", res.MessagesUsed, res.QuotaStatus.Chat.Remaining)
	if res.QuotaStatus.ProviderExhausted {
		color.Red("Provider cooldown active")
	}
	for _, t := range res.LoadedPapers {
		fmt.Printf("Loaded:   %s\n", t)
	}
}

func printSteps(steps []pipeline.ThinkingStep) {
	for _, s := range steps {
		mark := color.GreenString("✔")
		if s.Status == pipeline.StatusFailed {
			mark = color.RedString("✘")
		}
		result := s.Result
		if result != "" {
			result = " " + result
		}
		color.New(color.Faint).Printf("%s %s%s\n", mark, s.Step, result)
	}
}
