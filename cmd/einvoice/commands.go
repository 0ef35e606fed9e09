package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sergejparity/e-invoice/internal/bootstrap"
	"github.com/sergejparity/e-invoice/internal/domain/model"
	"github.com/sergejparity/e-invoice/internal/invoice"
)

const sendConcurrency = 4

type sendOptions struct {
	Dir      string
	Sender   string
	Receiver string
	Profile  string
	Files    []string
}

func parseSendFlags(args []string) (sendOptions, error) {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sendOptions
	fs.StringVar(&opts.Dir, "dir", "", "Directory of invoice XML files to send (alternative to file arguments)")
	fs.StringVar(&opts.Sender, "sender", "", "Sender participant identifier (required)")
	fs.StringVar(&opts.Receiver, "receiver", "", "Receiver participant identifier (required)")
	fs.StringVar(&opts.Profile, "profile", "bis3", "Document profile identifier")

	if err := fs.Parse(args); err != nil {
		return sendOptions{}, err
	}
	opts.Files = fs.Args()

	if opts.Sender == "" || opts.Receiver == "" {
		return sendOptions{}, errors.New("send requires -sender and -receiver")
	}
	if opts.Dir == "" && len(opts.Files) == 0 {
		return sendOptions{}, errors.New("send requires invoice files or -dir")
	}
	return opts, nil
}

func runSend(cmdCtx *commandContext, args []string) error {
	opts, err := parseSendFlags(args)
	if err != nil {
		return err
	}

	files := opts.Files
	if opts.Dir != "" {
		matches, globErr := filepath.Glob(filepath.Join(opts.Dir, "*.xml"))
		if globErr != nil {
			return fmt.Errorf("scan %s: %w", opts.Dir, globErr)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return errors.New("no invoice files found")
	}

	app, err := bootstrap.NewApp(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	var mu sync.Mutex
	jobIDs := make(map[string]string, len(files))

	g, ctx := errgroup.WithContext(cmdCtx.Ctx)
	g.SetLimit(sendConcurrency)
	for _, file := range files {
		file := file
		g.Go(func() error {
			raw, readErr := os.ReadFile(file)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", file, readErr)
			}
			xml := string(raw)

			if findings := invoice.Validate(xml); len(findings) > 0 {
				return fmt.Errorf("%s failed validation:\n  %s", file, strings.Join(findings, "\n  "))
			}

			jobID, enqErr := app.Queue.Enqueue(ctx, &model.JobPayload{
				XML:      xml,
				Sender:   opts.Sender,
				Receiver: opts.Receiver,
				Profile:  opts.Profile,
			})
			if enqErr != nil {
				return fmt.Errorf("enqueue %s: %w", file, enqErr)
			}

			mu.Lock()
			jobIDs[file] = jobID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		app.Queue.Wait()
		return err
	}

	app.Queue.Wait()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "File\tJob ID\tState\tTransmission ID\tError"); err != nil {
		return err
	}
	for _, file := range files {
		rec, getErr := app.Queue.Get(cmdCtx.Ctx, jobIDs[file])
		if getErr != nil {
			return fmt.Errorf("read back job for %s: %w", file, getErr)
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n",
			filepath.Base(file), rec.JobID, rec.State,
			strOrDash(rec.TransmissionID), strOrDash(rec.LastError)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runStatus(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jobID := fs.String("job", "", "Show a single job by id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	var records []*model.JobRecord
	if *jobID != "" {
		rec, getErr := app.Queue.Get(cmdCtx.Ctx, *jobID)
		if getErr != nil {
			return getErr
		}
		records = []*model.JobRecord{rec}
	} else {
		records, err = app.Queue.List(cmdCtx.Ctx)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Job ID\tState\tCreated\tUpdated\tTransmission ID\tError"); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.JobID, rec.State,
			rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339),
			strOrDash(rec.TransmissionID), strOrDash(rec.LastError)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runValidate(cmdCtx *commandContext, args []string) error {
	if len(args) == 0 {
		return errors.New("validate requires at least one invoice file")
	}

	failed := 0
	for _, file := range args {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		findings := invoice.Validate(string(raw))
		if len(findings) == 0 {
			if err := writef(os.Stdout, "%s: ok\n", file); err != nil {
				return err
			}
			continue
		}
		failed++
		if err := writef(os.Stdout, "%s:\n", file); err != nil {
			return err
		}
		for _, finding := range findings {
			if err := writef(os.Stdout, "  %s\n", finding); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func runAudit(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jobID := fs.String("job", "", "Filter events by job id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	var events []*model.AuditEvent
	if *jobID != "" {
		events, err = app.Audit.ReadByJob(cmdCtx.Ctx, *jobID)
	} else {
		events, err = app.Audit.ReadAll(cmdCtx.Ctx)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("encode audit event: %w", err)
		}
	}
	return nil
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
