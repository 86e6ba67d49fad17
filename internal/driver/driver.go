// Package driver orchestrates a generation run: it writes every catalog
// artifact, then the workflow description, and finally hands the artifact
// set to the external planner. Any failure aborts the run; nothing is
// retried and the workflow artifact is never written for an invalid graph.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/me/skein/internal/config"
	"github.com/me/skein/internal/emit"
	"github.com/me/skein/internal/pipeline"
	"github.com/me/skein/internal/planner"
	"github.com/me/skein/internal/stage"
	"github.com/me/skein/internal/store"
	"github.com/me/skein/pkg/catalog"
	"github.com/me/skein/pkg/workflow"
)

// Driver runs the write-catalogs, write-workflow, plan sequence.
type Driver struct {
	cfg       config.RunConfig
	planner   planner.Planner
	replicas  store.ReplicaStore
	publisher stage.Publisher
	logger    *slog.Logger
}

// New creates a driver. The planner is required; a replica store and a
// publisher are optional collaborators.
func New(cfg config.RunConfig, p planner.Planner, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:     cfg,
		planner: p,
		logger:  logger.With("component", "driver"),
	}
}

// WithReplicaStore attaches a persistent replica store. Its entries extend
// file-coverage validation, and the run's replica catalog is imported into
// it before planning.
func (d *Driver) WithReplicaStore(st store.ReplicaStore) *Driver {
	d.replicas = st
	return d
}

// WithPublisher attaches an artifact publisher that receives every written
// artifact after emission.
func (d *Driver) WithPublisher(p stage.Publisher) *Driver {
	d.publisher = p
	return d
}

// Generate emits the bundle without planning. Artifacts are written in
// dependency order: sites, properties, transformations, replicas, data
// files, then the workflow itself. The workflow is validated before its
// artifact is written.
func (d *Driver) Generate(ctx context.Context, b *pipeline.Bundle) error {
	if err := os.MkdirAll(d.cfg.RunDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	if err := d.writeCatalogs(ctx, b); err != nil {
		return err
	}
	if err := d.writeDataFiles(b); err != nil {
		return err
	}
	return d.writeWorkflow(ctx, b)
}

// Run emits the bundle and hands the artifact set to the planner. Each run
// gets a fresh ID that doubles as the planner basename, keeping repeated
// runs of the same workflow apart.
func (d *Driver) Run(ctx context.Context, b *pipeline.Bundle) (*planner.Result, error) {
	runID := uuid.NewString()
	d.logger.Info("starting run", "run_id", runID, "workflow", b.Name, "site", b.ExecutionSite)

	if err := d.Generate(ctx, b); err != nil {
		return nil, err
	}

	req := planner.Request{
		Dir:          d.cfg.RunDir,
		WorkflowFile: d.cfg.OutputFile,
		ConfFile:     pipeline.PropertiesFile,
		Sites:        []string{"local"},
		Basename:     runID,
		Submit:       d.cfg.Submit,
		Verbosity:    d.cfg.Verbosity,
	}
	res, err := d.planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	d.logger.Info("planning finished", "run_id", runID, "run_handle", res.RunHandle, "submitted", d.cfg.Submit)
	return res, nil
}

func (d *Driver) writeCatalogs(ctx context.Context, b *pipeline.Bundle) error {
	if b.Sites != nil {
		data, err := emit.SiteCatalog(b.Sites)
		if err != nil {
			return fmt.Errorf("render site catalog: %w", err)
		}
		if err := d.writeArtifact(ctx, pipeline.SitesFile, data); err != nil {
			return err
		}
	}

	if err := d.writeArtifact(ctx, pipeline.PropertiesFile, b.Properties.Render()); err != nil {
		return err
	}
	for name, props := range b.NestedProperties {
		if err := d.writeArtifact(ctx, name, props.Render()); err != nil {
			return err
		}
	}

	data, err := emit.TransformationCatalog(b.Transformations)
	if err != nil {
		return fmt.Errorf("render transformation catalog: %w", err)
	}
	if err := d.writeArtifact(ctx, pipeline.TransformationsFile, data); err != nil {
		return err
	}
	for name, tc := range b.NestedTransformations {
		data, err := emit.TransformationCatalog(tc)
		if err != nil {
			return fmt.Errorf("render nested transformation catalog %s: %w", name, err)
		}
		if err := d.writeArtifact(ctx, name, data); err != nil {
			return err
		}
	}

	if d.replicas != nil {
		added, err := d.replicas.ImportCatalog(ctx, b.Replicas)
		if err != nil {
			return fmt.Errorf("import replicas into store: %w", err)
		}
		d.logger.Debug("replica store updated", "added", added)
	}
	data, err = emit.ReplicaCatalog(b.Replicas)
	if err != nil {
		return fmt.Errorf("render replica catalog: %w", err)
	}
	if err := d.writeArtifact(ctx, pipeline.ReplicasFile, data); err != nil {
		return err
	}
	for name, rc := range b.NestedReplicas {
		data, err := emit.ReplicaCatalog(rc)
		if err != nil {
			return fmt.Errorf("render nested replica catalog %s: %w", name, err)
		}
		if err := d.writeArtifact(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) writeDataFiles(b *pipeline.Bundle) error {
	for name, content := range b.DataFiles {
		path := filepath.Join(d.cfg.RunDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write data file %s: %w", name, err)
		}
	}
	return nil
}

// writeWorkflow validates the graph against the bundle's catalogs and the
// replica store, then writes the workflow artifact and every pre-planned
// nested definition.
func (d *Driver) writeWorkflow(ctx context.Context, b *pipeline.Bundle) error {
	replicas, err := d.effectiveReplicas(ctx, b)
	if err != nil {
		return err
	}
	err = b.Workflow.Validate(workflow.ValidateOptions{
		Transformations: b.Transformations,
		Replicas:        replicas,
		ExecutionSite:   b.ExecutionSite,
	})
	if err != nil {
		return err
	}

	nested, err := emit.NestedDefinitions(b.Workflow)
	if err != nil {
		return err
	}
	for name, data := range nested {
		if err := d.writeArtifact(ctx, name, data); err != nil {
			return err
		}
	}

	data, err := emit.Workflow(b.Workflow)
	if err != nil {
		return err
	}
	return d.writeArtifact(ctx, d.cfg.OutputFile, data)
}

// effectiveReplicas merges the run's replica catalog with entries persisted
// in the replica store.
func (d *Driver) effectiveReplicas(ctx context.Context, b *pipeline.Bundle) (*catalog.ReplicaCatalog, error) {
	if d.replicas == nil {
		return b.Replicas, nil
	}
	merged := catalog.NewReplicaCatalog()
	stored, err := d.replicas.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read replica store: %w", err)
	}
	for _, r := range stored {
		if err := merged.Add(r.Site, r.LFN, r.PFN); err != nil {
			return nil, err
		}
	}
	for _, r := range b.Replicas.All() {
		err := merged.Add(r.Site, r.LFN, r.PFN)
		if err != nil {
			var dup *catalog.DuplicateEntryError
			if !errors.As(err, &dup) {
				return nil, err
			}
		}
	}
	return merged, nil
}

func (d *Driver) writeArtifact(ctx context.Context, name string, data []byte) error {
	path := filepath.Join(d.cfg.RunDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	d.logger.Info("wrote artifact", "file", name, "size", humanize.Bytes(uint64(len(data))))

	if d.publisher != nil {
		loc, err := d.publisher.Publish(ctx, path)
		if err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		d.logger.Debug("published artifact", "file", name, "location", loc)
	}
	return nil
}
