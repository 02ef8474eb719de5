// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file discovers, parses and decodes HCL descriptor files.
package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/fsutil"
	"github.com/specialistvlad/burstplan/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader reads.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// Load parses every .hcl file under paths into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	bodies := make([]hcl.Body, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		bodies = append(bodies, hclFile.Body)
	}

	locals, diags := collectLocals(bodies)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read locals: %w", diags)
	}
	evalCtx, err := evalLocals(locals)
	if err != nil {
		return nil, err
	}
	logger.Debug("Locals evaluated.", "count", len(locals))

	model := &config.Model{}
	for i, file := range files {
		var root schema.File
		if diags := gohcl.DecodeBody(bodies[i], evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Plans {
			def, err := translatePlan(evalCtx, p, file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Plans = append(model.Plans, def)
		}
		for _, f := range root.Fragments {
			def, err := translateFragment(f, file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Fragments = append(model.Fragments, def)
		}
	}

	logger.Debug("HCL loading complete.", "plans", len(model.Plans), "fragments", len(model.Fragments))
	return model, nil
}
