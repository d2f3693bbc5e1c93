package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"docintake/internal/model"
	"docintake/internal/service"
	"docintake/internal/session"
)

var errUsage = errors.New("usage: intake resume|document|list|show|request [flags] [args]")

func exitCode(err error) int {
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		return 2
	}
	return 1
}

// run dispatches one subcommand. Results are written to stdout as indented JSON.
func run(ctx context.Context, args []string, svc service.IntakeService, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "resume":
		fs := flag.NewFlagSet("resume", flag.ContinueOnError)
		fs.SetOutput(stderr)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: intake resume <file>", errUsage)
		}
		u, err := readUpload(fs.Arg(0))
		if err != nil {
			return err
		}
		out, err := svc.UploadResume(ctx, u)
		if err != nil {
			return describe(err)
		}
		return writeJSON(stdout, out)

	case "document":
		fs := flag.NewFlagSet("document", flag.ContinueOnError)
		fs.SetOutput(stderr)
		candidate := fs.String("candidate", "", "candidate id")
		docType := fs.String("type", "", "pan_card, aadhaar_card or other")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 || *candidate == "" || *docType == "" {
			return fmt.Errorf("%w: intake document -candidate <id> -type <type> <file>", errUsage)
		}
		u, err := readUpload(fs.Arg(0))
		if err != nil {
			return err
		}
		out, err := svc.UploadDocument(ctx, model.ID(*candidate), *docType, u)
		if err != nil {
			return describe(err)
		}
		return writeJSON(stdout, out)

	case "list":
		return writeJSON(stdout, svc.ListCandidates(ctx))

	case "show", "request":
		if len(rest) != 1 {
			return fmt.Errorf("%w: intake %s <candidate-id>", errUsage, cmd)
		}
		id := model.ID(rest[0])
		if cmd == "show" {
			view, err := svc.CandidateView(ctx, id)
			if err != nil {
				return err
			}
			return writeJSON(stdout, view)
		}
		res, err := svc.RequestDocuments(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(stdout, res)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// readUpload loads a local file and declares its sniffed media type.
func readUpload(path string) (service.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{
		FileName:  filepath.Base(path),
		MediaType: mimetype.Detect(content).String(),
		Content:   content,
	}, nil
}

// describe reduces a session failure to its operator-facing reason.
func describe(err error) error {
	var serr *session.Error
	if errors.As(err, &serr) && serr.Reason != "" {
		return fmt.Errorf("%s: %w", serr.Reason, err)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// progressPrinter renders session progress on one terminal line per slot.
func progressPrinter(w io.Writer) func(slot string, progress int) {
	return func(slot string, progress int) {
		fmt.Fprintf(w, "\r%s %3d%%", slot, progress)
		if progress >= 100 {
			fmt.Fprintln(w)
		}
	}
}
