// Command einvoice submits electronic invoices through the transmission
// queue and inspects their delivery state and audit trail.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sergejparity/e-invoice/config"
	"github.com/sergejparity/e-invoice/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"send": {
			name:        "send",
			description: "Validate, enqueue and dispatch invoice XML files",
			run:         runSend,
		},
		"status": {
			name:        "status",
			description: "List transmission jobs and their delivery state",
			run:         runStatus,
		},
		"validate": {
			name:        "validate",
			description: "Check invoice XML files against EN 16931 business terms",
			run:         runValidate,
		},
		"audit": {
			name:        "audit",
			description: "Print the audit trail, optionally filtered by job id",
			run:         runAudit,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: einvoice <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-10s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
