package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/burstplan/internal/builder"
	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/internal/render"
	"github.com/specialistvlad/burstplan/internal/shard"
	"github.com/specialistvlad/burstplan/internal/summary"
)

// Build loads every descriptor under paths and composes its plans.
func (a *App) Build(ctx context.Context, paths ...string) ([]*plan.Plan, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	model, err := a.load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if len(model.Plans) == 0 {
		return nil, fmt.Errorf("no plans found in %s", strings.Join(paths, ", "))
	}
	logger.Debug("Descriptors loaded.", "plans", len(model.Plans), "fragments", len(model.Fragments))

	if len(model.Fragments) > 0 {
		def := model.Fragments[0]
		return nil, fmt.Errorf("fragment %q in %s must be declared under the fragments path", def.Name, def.Source)
	}

	return builder.BuildAll(ctx, a.builder, model)
}

// RenderDocuments builds the plans under paths and encodes each of them.
// Plans are rendered concurrently, bounded by the configured worker count;
// the returned documents keep the order the plans were declared in.
func (a *App) RenderDocuments(ctx context.Context, format string, paths ...string) ([]*render.Document, error) {
	enc, err := render.EncoderFor(format)
	if err != nil {
		return nil, err
	}
	plans, err := a.Build(ctx, paths...)
	if err != nil {
		return nil, err
	}

	docs := make([]*render.Document, len(plans))
	g, gctx := errgroup.WithContext(a.context(ctx))
	g.SetLimit(a.config.WorkerCount)
	for i, p := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := render.Render(p, enc)
			if err != nil {
				return err
			}
			ctxlog.FromContext(gctx).Debug("Plan rendered.", "plan", p.Identifier(), "format", doc.Format, "bytes", len(doc.Body))
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Render renders the plans under paths and writes them. With an empty
// outDir the documents go to the app's output writer, otherwise one file
// per plan is written into outDir.
func (a *App) Render(ctx context.Context, format, outDir string, paths ...string) error {
	docs, err := a.RenderDocuments(ctx, format, paths...)
	if err != nil {
		return err
	}
	if outDir == "" {
		return a.writeStream(docs)
	}
	return a.writeFiles(outDir, docs)
}

func (a *App) writeStream(docs []*render.Document) error {
	for i, doc := range docs {
		if i > 0 && doc.Format == render.FormatYAML {
			if _, err := fmt.Fprintln(a.outW, "---"); err != nil {
				return err
			}
		}
		if _, err := a.outW.Write(doc.Body); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) writeFiles(outDir string, docs []*render.Document) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(outDir, doc.Filename())
		if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		a.logger.Info("Plan document written.", "plan", doc.Plan, "path", path)
	}
	return nil
}

// Validate builds the plans under paths and checks every one of them,
// reporting all violations of all plans together.
func (a *App) Validate(ctx context.Context, paths ...string) ([]*plan.Plan, error) {
	plans, err := a.Build(ctx, paths...)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, p := range plans {
		if err := render.Validate(p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return plans, nil
}

// Inspect prints a summary of the plans under paths.
func (a *App) Inspect(ctx context.Context, paths ...string) error {
	plans, err := a.Build(ctx, paths...)
	if err != nil {
		return err
	}
	return summary.NewPrinter(a.outW).Plans(plans)
}

// ListFragments prints every registered fragment.
func (a *App) ListFragments() error {
	return summary.NewPrinter(a.outW).Fragments(a.library.Fragments())
}

// Shards prints the shard labels for total, one per line.
func (a *App) Shards(total int) error {
	seq, err := shard.Plan(total)
	if err != nil {
		return err
	}
	var b strings.Builder
	for d := range seq {
		b.WriteString(d.Label)
		b.WriteByte('\n')
	}
	_, err = fmt.Fprint(a.outW, b.String())
	return err
}
