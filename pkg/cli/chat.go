package cli

import (
	"bufio"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/cli/config"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/repository/memory"
	"github.com/quillforge/quill/pkg/service/assistant"
	"github.com/quillforge/quill/pkg/service/generation"
	"github.com/quillforge/quill/pkg/usecase"
	"github.com/quillforge/quill/pkg/utils/errutil"
	"github.com/quillforge/quill/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	assistantColor = color.New(color.FgCyan)
	systemColor    = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
)

// cmdChat is an interactive development surface: one in-memory session on
// the terminal, with generation running synchronously.
func cmdChat() *cli.Command {
	var generationTimeout time.Duration
	var llmCfg config.LLM
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "generation-timeout",
			Usage:       "Deadline for one document generation request",
			Value:       usecase.DefaultGenerationTimeout,
			Sources:     cli.EnvVars("QUILL_GENERATION_TIMEOUT"),
			Destination: &generationTimeout,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive terminal chat session (in-memory, development)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load chat policy")
			}

			// Synchronous dispatcher: replies and generation finish before
			// the prompt returns
			syncDispatch := func(ctx context.Context, handler func(ctx context.Context) error) {
				_ = errutil.Handle(ctx, handler(ctx), "dispatch failed")
			}

			ucOpts := []usecase.Option{
				usecase.WithDispatcher(syncDispatch),
				usecase.WithGenerationTimeout(generationTimeout),
			}
			ucOpts = append(ucOpts, policyOptions(policy)...)

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}
			if llmClient != nil {
				generator, err := generation.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize generator")
				}
				responder, err := assistant.NewLLM(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize responder")
				}
				ucOpts = append(ucOpts, usecase.WithGenerator(generator), usecase.WithResponder(responder))
			}

			repo := memory.New()
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()
			uc := usecase.New(repo, ucOpts...)

			session, err := uc.StartSession(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to start session")
			}

			messages, err := uc.ListMessages(ctx, session.ID)
			if err != nil {
				return err
			}
			for _, msg := range messages {
				assistantColor.Printf("assistant> %s\n", msg.Text())
			}
			systemColor.Println("commands: /generate, /doc, /export <path>, /attach <path> [text], /quit")

			return chatLoop(ctx, uc, session.ID)
		},
	}
}

func chatLoop(ctx context.Context, uc *usecase.UseCases, sessionID types.SessionID) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil

		case line == "/generate":
			if _, err := uc.RequestGeneration(ctx, sessionID); err != nil {
				errorColor.Printf("error: %v\n", err)
				continue
			}
			printDocument(ctx, uc, sessionID)

		case line == "/doc":
			printDocument(ctx, uc, sessionID)

		case strings.HasPrefix(line, "/export "):
			exportDocument(ctx, uc, sessionID, strings.TrimSpace(strings.TrimPrefix(line, "/export ")))

		case strings.HasPrefix(line, "/attach "):
			sendWithAttachment(ctx, uc, sessionID, strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))

		default:
			sendMessage(ctx, uc, sessionID, line, nil)
		}
	}
}

func sendMessage(ctx context.Context, uc *usecase.UseCases, sessionID types.SessionID, text string, files []usecase.FileUpload) {
	before, err := uc.ListMessages(ctx, sessionID)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}

	result, err := uc.SubmitMessage(ctx, sessionID, text, files)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}
	for _, rej := range result.Rejections {
		systemColor.Printf("rejected %s: %s\n", rej.FileName, rej.Reason)
	}

	// Synchronous dispatcher means the reply is already appended
	after, err := uc.ListMessages(ctx, sessionID)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}
	for _, msg := range after[len(before):] {
		if msg.Author() == types.AuthorAssistant {
			assistantColor.Printf("assistant> %s\n", msg.Text())
		}
	}
}

func sendWithAttachment(ctx context.Context, uc *usecase.UseCases, sessionID types.SessionID, args string) {
	path := args
	text := ""
	if idx := strings.IndexByte(args, ' '); idx > 0 {
		path = args[:idx]
		text = strings.TrimSpace(args[idx+1:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	sendMessage(ctx, uc, sessionID, text, []usecase.FileUpload{{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}})
}

func printDocument(ctx context.Context, uc *usecase.UseCases, sessionID types.SessionID) {
	state, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}
	if state.Session.GenerationStatus == types.GenerationFailed {
		errorColor.Printf("generation failed: %s\n", state.Session.FailureReason)
		return
	}
	if !state.HasDocument {
		systemColor.Println("no document yet, use /generate")
		return
	}

	doc, err := uc.GetDocument(ctx, sessionID)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}

	systemColor.Printf("== %s (%d min read, tags: %s)\n",
		doc.Title, doc.EstimatedReadMinutes, strings.Join(doc.Tags, ", "))
	fmt.Println(doc.EffectiveBody())
}

func exportDocument(ctx context.Context, uc *usecase.UseCases, sessionID types.SessionID, dir string) {
	format := usecase.ExportMarkdown
	if strings.HasSuffix(dir, ".html") {
		format = usecase.ExportHTML
	}

	export, err := uc.ExportDocument(ctx, sessionID, format)
	if err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}

	path := dir
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		path = filepath.Join(dir, export.FileName)
	}
	if err := os.WriteFile(path, export.Data, 0644); err != nil {
		errorColor.Printf("error: %v\n", err)
		return
	}
	systemColor.Printf("exported to %s\n", path)
}
