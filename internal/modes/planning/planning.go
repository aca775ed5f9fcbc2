// Package planning implements the built-in planning mode: it turns the
// project document produced by discovery into an ordered task list and
// appends the resulting plan to the document.
//
// State schema, version 1: data holds the collected tasks under "tasks",
// an ordered list of task descriptions. Untagged legacy records are
// migrated by tagging them and ensuring the list exists.
package planning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parley/internal/artifact"
	"parley/internal/mode"
	"parley/internal/modes/discovery"
	"parley/internal/state"
	"parley/pkg/logging"
)

const (
	// ModeID is the registry identifier of the planning mode.
	ModeID = "planning"

	// SchemaVersion is the current state schema version.
	SchemaVersion = "1"

	// doneCommand finalizes the plan.
	doneCommand = "done"

	subsystem = "PlanningMode"
)

// Mode is the planning mode implementation.
type Mode struct {
	artifacts *artifact.Store
	record    *state.Record
	autoSave  bool
}

// New constructs an uninitialized planning mode.
func New() *Mode {
	return &Mode{}
}

// Descriptor returns the registry entry for the planning mode. Planning
// declares a dependency on discovery: a plan needs a project document to
// plan against.
func Descriptor() mode.Descriptor {
	return mode.Descriptor{
		ID:           ModeID,
		Description:  "turns the project document into an ordered task list",
		Dependencies: []string{discovery.ModeID},
		LoadPriority: 20,
		Enabled:      true,
		New:          func() mode.Mode { return New() },
	}
}

func (m *Mode) ID() string            { return ModeID }
func (m *Mode) SchemaVersion() string { return SchemaVersion }

func (m *Mode) Description() string {
	return "turns the project document into an ordered task list"
}

// DoInitialize wires the artifact store and loads or creates the task list.
func (m *Mode) DoInitialize(ctx context.Context, deps *mode.Deps) error {
	cfg, err := deps.Config.Get()
	if err != nil {
		return err
	}

	m.artifacts = artifact.NewStore(deps.Files, cfg.Paths.ArtifactFile, cfg.Security.BackupOnUpdate)
	m.autoSave = cfg.Preferences.AutoSaveState

	record, err := deps.Store.Load("")
	if err != nil {
		return err
	}
	if record == nil {
		record = &state.Record{
			SchemaVersion: SchemaVersion,
			Data: map[string]interface{}{
				"tasks": []interface{}{},
			},
		}
		if record, err = deps.Store.Save(record); err != nil {
			return err
		}
		logging.Info(subsystem, "Started a new plan %s", record.ID)
	}

	m.record = record
	return nil
}

// DoExecute adds one task per non-empty input turn. An empty input replies
// with the current plan; the done command appends the plan to the project
// document and finalizes it.
func (m *Mode) DoExecute(ctx context.Context, input string, deps *mode.Deps) (*mode.Output, error) {
	input = strings.TrimSpace(input)

	var out mode.Output
	switch {
	case input == "":
		out.Data = m.summaryReply(deps)
	case strings.EqualFold(input, doneCommand):
		reply, err := m.finalize()
		if err != nil {
			return nil, err
		}
		out.Data = reply
	default:
		tasks := append(m.tasks(), input)
		m.record.Set("tasks", tasks)
		out.Data = deps.Prompts.RenderOr("task_added",
			"Task {{ .count }} recorded. Add another, or type done to finalize the plan.",
			map[string]interface{}{"count": len(tasks)})
	}

	if m.autoSave {
		if _, err := deps.Store.Save(m.record); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("failed to auto-save state: %v", err))
		}
	}
	return &out, nil
}

// DoValidate checks the task list shape and warns when no project document
// exists yet.
func (m *Mode) DoValidate(ctx context.Context, deps *mode.Deps) *mode.Report {
	report := &mode.Report{Valid: true}
	if deps.Store == nil {
		report.Warnings = append(report.Warnings, "planning mode is not initialized")
		return report
	}

	if _, err := deps.Store.Load(""); err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	if m.artifacts != nil {
		doc, err := m.artifacts.Load()
		if err != nil {
			report.Valid = false
			report.Errors = append(report.Errors, err.Error())
		} else if doc == nil {
			report.Warnings = append(report.Warnings, "no project document yet; run discovery first")
		}
	}
	return report
}

// DoCleanup persists the in-flight plan and drops all references.
func (m *Mode) DoCleanup(ctx context.Context, deps *mode.Deps) error {
	if m.record != nil {
		if _, err := deps.Store.Save(m.record); err != nil {
			return err
		}
	}
	m.record = nil
	m.artifacts = nil
	return nil
}

func (m *Mode) tasks() []interface{} {
	tasks, _ := m.record.Data["tasks"].([]interface{})
	return tasks
}

func (m *Mode) summaryReply(deps *mode.Deps) string {
	tasks := m.tasks()
	if len(tasks) == 0 {
		return deps.Prompts.RenderOr("intro",
			"No tasks yet. Describe the first task of the plan.",
			nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current plan (%d tasks):\n", len(tasks))
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. %v\n", i+1, task)
	}
	b.WriteString("Add another task, or type done to finalize the plan.")
	return b.String()
}

// finalize appends the plan section to the project document and advances
// its stage. A plan without a discovery document still produces a document,
// just one without the discovery narrative.
func (m *Mode) finalize() (string, error) {
	tasks := m.tasks()
	if len(tasks) == 0 {
		return "Nothing to finalize: the plan has no tasks yet.", nil
	}

	doc, err := m.artifacts.Load()
	if err != nil {
		return "", err
	}
	if doc == nil {
		doc = &artifact.Document{}
	}

	doc.Meta.Stage = artifact.StagePlanning
	if doc.Meta.ID == "" {
		doc.Meta.ID = m.record.ID
	}
	doc.Touch(time.Now())

	var plan strings.Builder
	for i, task := range tasks {
		fmt.Fprintf(&plan, "%d. %v", i+1, task)
		if i < len(tasks)-1 {
			plan.WriteString("\n")
		}
	}
	doc.AppendSection("Plan", plan.String())

	if err := m.artifacts.Save(doc); err != nil {
		return "", err
	}

	m.recordArtifact(m.artifacts.Path())
	logging.Info(subsystem, "Plan with %d tasks appended to %s", len(tasks), m.artifacts.Path())
	return fmt.Sprintf("Plan finalized with %d tasks and appended to %s.", len(tasks), m.artifacts.Path()), nil
}

func (m *Mode) recordArtifact(path string) {
	for _, existing := range m.record.Artifacts {
		if existing == path {
			return
		}
	}
	m.record.Artifacts = append(m.record.Artifacts, path)
}
