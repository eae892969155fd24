package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/cv-autofill/internal/adapter/observability"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/repo/sqlite"
	s3loader "github.com/fairyhunter13/cv-autofill/internal/adapter/storage/s3"
	"github.com/fairyhunter13/cv-autofill/internal/app"
	"github.com/fairyhunter13/cv-autofill/internal/config"
	"github.com/fairyhunter13/cv-autofill/internal/domain"
	obsctx "github.com/fairyhunter13/cv-autofill/internal/observability"
	"github.com/fairyhunter13/cv-autofill/internal/profileschema"
	"github.com/fairyhunter13/cv-autofill/internal/usecase"
)

type extractOptions struct {
	out         string
	store       string
	validate    bool
	concurrency int
	verbose     bool
}

// documentReport is one line of extract output.
type documentReport struct {
	Source      string            `json:"source"`
	Result      *domain.RunResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	UserMessage string            `json:"userMessage,omitempty"`
	SchemaError string            `json:"schemaError,omitempty"`
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file|s3://bucket/key>...",
		Short: "Extract profiles from one or more documents",
		Long:  "Runs every document through format detection, text extraction (with OCR fallback for scanned PDFs) and field extraction. One JSON report is written per line.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			runner, err := app.BuildExtractionService(cfg)
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), cmd, cfg, runner, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write reports to this file instead of stdout")
	cmd.Flags().StringVar(&opts.store, "store", "", "Persist results in this SQLite database")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Check each profile against the profile JSON schema")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 2, "Documents processed in parallel")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress events to stderr")
	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, cfg config.Config, runner usecase.DocumentRunner, opts *extractOptions, sources []string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg)
	logger = slog.New(leveled{logger.Handler(), level})
	ctx = obsctx.ContextWithLogger(ctx, logger)

	var repo domain.ProfileRepository
	if opts.store != "" {
		db, err := sqlite.Open(ctx, opts.store)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		repo = db
	}
	svc := usecase.NewProfileService(runner, repo, nil, nil)

	var loader *s3loader.Loader
	for _, src := range sources {
		if s3loader.IsURI(src) {
			l, err := s3loader.NewLoader(ctx, s3loader.Options{
				Region:         cfg.AWSRegion,
				Endpoint:       cfg.S3Endpoint,
				ForcePathStyle: cfg.S3ForcePathStyle,
				MaxBytes:       cfg.MaxUploadBytes(),
			})
			if err != nil {
				return err
			}
			loader = l
			break
		}
	}

	reports := make([]documentReport, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			reports[i] = extractOne(gctx, svc, loader, src, opts)
			return nil
		})
	}
	_ = g.Wait()

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	enc := json.NewEncoder(w)
	failed := 0
	for _, r := range reports {
		if r.Error != "" || r.SchemaError != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(sources))
	}
	return nil
}

func extractOne(ctx context.Context, svc *usecase.ProfileService, loader *s3loader.Loader, src string, opts *extractOptions) documentReport {
	rep := documentReport{Source: src}
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("source", src))

	doc, err := loadDocument(ctx, loader, src)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	res, err := svc.Run(ctx, doc, func(e domain.ProgressEvent) {
		lg.Info("progress", slog.String("state", string(e.State)), slog.String("message", e.Message), slog.Float64("progress", e.Progress))
	})
	if err != nil {
		rep.Error = err.Error()
		rep.UserMessage = domain.UserMessage(err)
		return rep
	}
	rep.Result = &res
	if opts.validate {
		if err := profileschema.Validate(res.Profile); err != nil {
			rep.SchemaError = err.Error()
		}
	}
	return rep
}

func loadDocument(ctx context.Context, loader *s3loader.Loader, src string) (domain.SourceDocument, error) {
	if s3loader.IsURI(src) {
		return loader.Load(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("read %s: %w", src, err)
	}
	return domain.SourceDocument{
		Data:     data,
		MIME:     mimetype.Detect(data).String(),
		Filename: filepath.Base(src),
	}, nil
}

// leveled filters records below min before handing them to the JSON handler.
type leveled struct {
	slog.Handler
	min slog.Level
}

func (h leveled) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.min && h.Handler.Enabled(ctx, l)
}

func (h leveled) WithAttrs(attrs []slog.Attr) slog.Handler {
	return leveled{h.Handler.WithAttrs(attrs), h.min}
}

func (h leveled) WithGroup(name string) slog.Handler {
	return leveled{h.Handler.WithGroup(name), h.min}
}
