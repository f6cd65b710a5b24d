package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/quillforge/quill/pkg/cli/config"
	httpctrl "github.com/quillforge/quill/pkg/controller/http"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/service/assistant"
	"github.com/quillforge/quill/pkg/service/generation"
	"github.com/quillforge/quill/pkg/service/notion"
	"github.com/quillforge/quill/pkg/usecase"
	"github.com/quillforge/quill/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var notionToken string
	var notionParentID string
	var generationTimeout time.Duration
	var repoCfg config.Repository
	var llmCfg config.LLM
	var storageCfg config.Storage
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("QUILL_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "generation-timeout",
			Usage:       "Deadline for one document generation request",
			Value:       usecase.DefaultGenerationTimeout,
			Sources:     cli.EnvVars("QUILL_GENERATION_TIMEOUT"),
			Destination: &generationTimeout,
		},
		&cli.StringFlag{
			Name:        "notion-api-token",
			Usage:       "Notion API token for document publishing",
			Sources:     cli.EnvVars("QUILL_NOTION_API_TOKEN"),
			Destination: &notionToken,
		},
		&cli.StringFlag{
			Name:        "notion-parent-page",
			Usage:       "Notion parent page ID published documents are created under",
			Sources:     cli.EnvVars("QUILL_NOTION_PARENT_PAGE"),
			Destination: &notionParentID,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			store, storeCloser, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize attachment storage")
			}
			defer storeCloser()

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load chat policy")
			}

			ucOpts := []usecase.Option{
				usecase.WithStorage(store),
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
				logging.Default().Info("LLM services enabled")
			} else {
				logging.Default().Info("No LLM provider configured, using scripted services")
			}

			if notionToken != "" {
				publisher, err := notion.New(notionToken, notionParentID)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize notion publisher")
				}
				ucOpts = append(ucOpts, usecase.WithPublisher(publisher))
				logging.Default().Info("Notion publishing enabled")
			} else {
				logging.Default().Info("Notion API token not configured, publishing disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// policyOptions translates a chat policy file into use case options
func policyOptions(policy *config.ChatPolicy) []usecase.Option {
	if policy == nil {
		return nil
	}

	var opts []usecase.Option
	if policy.Greeting != "" {
		opts = append(opts, usecase.WithGreeting(policy.Greeting))
	}
	if policy.MaxAttachmentBytes > 0 || len(policy.AllowedMimePrefixes) > 0 {
		opts = append(opts, usecase.WithValidator(
			model.NewAttachmentValidator(policy.MaxAttachmentBytes, policy.AllowedMimePrefixes)))
	}
	if len(policy.AckLines) > 0 || policy.ImageAckFormat != "" {
		opts = append(opts, usecase.WithResponder(assistant.NewScripted(
			assistant.WithAckLines(policy.AckLines),
			assistant.WithImageAckFormat(policy.ImageAckFormat),
		)))
	}
	return opts
}
