// Package discovery implements the built-in discovery mode: a guided
// question sequence that captures what a project is about and distills the
// answers into the generated project document.
//
// State schema, version 2: data holds the zero-based index of the next
// unanswered question under "step" and the collected answers under
// "answers", a mapping from question key to answer text. Version 1 (and
// untagged legacy records) kept answers as top-level keys next to "step";
// migration moves them under "answers".
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parley/internal/artifact"
	"parley/internal/mode"
	"parley/internal/state"
	"parley/pkg/logging"
)

const (
	// ModeID is the registry identifier of the discovery mode.
	ModeID = "discovery"

	// SchemaVersion is the current state schema version.
	SchemaVersion = "2"

	subsystem = "DiscoveryMode"
)

// question is one step of the guided sequence. The prompt text can be
// overridden per installation through the mode's prompt override file,
// keyed by the question key.
type question struct {
	key    string
	title  string
	prompt string
}

var questions = []question{
	{"problem", "Problem", "What problem is this project solving, and for whom does it hurt the most?"},
	{"audience", "Audience", "Who is the primary audience or user of the result?"},
	{"outcome", "Outcome", "What observable outcome would make this project a success?"},
	{"constraints", "Constraints", "What constraints apply: time, budget, technology, team?"},
	{"risks", "Risks", "What is the biggest risk or unknown right now?"},
}

// Mode is the discovery mode implementation. A single instance lives for
// the process; the lifecycle controller serializes all calls.
type Mode struct {
	artifacts *artifact.Store
	record    *state.Record
	autoSave  bool
}

// New constructs an uninitialized discovery mode.
func New() *Mode {
	return &Mode{}
}

// Descriptor returns the registry entry for the discovery mode.
func Descriptor() mode.Descriptor {
	return mode.Descriptor{
		ID:           ModeID,
		Description:  "guided question sequence that captures project fundamentals",
		LoadPriority: 10,
		Enabled:      true,
		New:          func() mode.Mode { return New() },
	}
}

func (m *Mode) ID() string            { return ModeID }
func (m *Mode) SchemaVersion() string { return SchemaVersion }

func (m *Mode) Description() string {
	return "guided question sequence that captures project fundamentals"
}

// DoInitialize resolves configuration, wires the artifact store, and loads
// the latest stored conversation, creating a fresh one on first use.
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
				"step":    float64(0),
				"answers": map[string]interface{}{},
			},
		}
		if record, err = deps.Store.Save(record); err != nil {
			return err
		}
		logging.Info(subsystem, "Started a new discovery conversation %s", record.ID)
	}

	m.record = record
	return nil
}

// DoExecute advances the question sequence by one turn. A non-empty input
// answers the pending question; the reply is the next question, or the
// completion summary once every question is answered (at which point the
// project document is written).
func (m *Mode) DoExecute(ctx context.Context, input string, deps *mode.Deps) (*mode.Output, error) {
	step := m.currentStep()
	input = strings.TrimSpace(input)

	if step >= len(questions) {
		return &mode.Output{Data: m.completionReply()}, nil
	}

	if input != "" {
		m.answers()[questions[step].key] = input
		step++
		m.record.Set("step", float64(step))
	}

	var out mode.Output
	if step >= len(questions) {
		if err := m.writeDocument(); err != nil {
			return nil, err
		}
		out.Data = m.completionReply()
	} else {
		q := questions[step]
		out.Data = deps.Prompts.RenderOr(q.key, q.prompt, map[string]interface{}{
			"step":  step + 1,
			"total": len(questions),
		})
	}

	if m.autoSave {
		if _, err := deps.Store.Save(m.record); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("failed to auto-save state: %v", err))
		}
	}
	return &out, nil
}

// DoValidate checks the stored conversation for internal consistency.
func (m *Mode) DoValidate(ctx context.Context, deps *mode.Deps) *mode.Report {
	report := &mode.Report{Valid: true}
	if deps.Store == nil {
		report.Warnings = append(report.Warnings, "discovery mode is not initialized")
		return report
	}

	record, err := deps.Store.Load("")
	if err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	if record == nil {
		report.Warnings = append(report.Warnings, "no discovery conversation started yet")
		return report
	}

	if step, ok := record.GetInt("step"); !ok || step < 0 || step > len(questions) {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("stored step is out of range [0, %d]", len(questions)))
	}
	return report
}

// DoCleanup persists the in-flight conversation and drops all references.
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

// Progress reports how many questions have been answered.
func (m *Mode) Progress() (answered, total int) {
	if m.record == nil {
		return 0, len(questions)
	}
	return m.currentStep(), len(questions)
}

func (m *Mode) currentStep() int {
	step, ok := m.record.GetInt("step")
	if !ok || step < 0 {
		return 0
	}
	if step > len(questions) {
		return len(questions)
	}
	return step
}

// answers returns the answer mapping, creating it when absent.
func (m *Mode) answers() map[string]interface{} {
	existing, ok := m.record.Data["answers"].(map[string]interface{})
	if !ok {
		existing = map[string]interface{}{}
		m.record.Set("answers", existing)
	}
	return existing
}

func (m *Mode) completionReply() string {
	return fmt.Sprintf("Discovery complete: %d questions answered. The project document has been written to %s.",
		len(questions), m.artifacts.Path())
}

// writeDocument distills the collected answers into the project document
// and records the artifact reference on the conversation.
func (m *Mode) writeDocument() error {
	doc := &artifact.Document{
		Meta: artifact.Frontmatter{
			ID:         m.record.ID,
			Stage:      artifact.StageDiscovery,
			Confidence: m.confidence(),
		},
	}
	doc.Touch(time.Now())

	answers := m.answers()
	for _, q := range questions {
		answer, _ := answers[q.key].(string)
		if answer == "" {
			answer = "_Not answered._"
		}
		doc.AppendSection(q.title, answer)
	}

	if err := m.artifacts.Save(doc); err != nil {
		return err
	}

	m.recordArtifact(m.artifacts.Path())
	logging.Info(subsystem, "Project document written after %d answers", len(answers))
	return nil
}

// confidence is the answered fraction of the question sequence.
func (m *Mode) confidence() float64 {
	answered := 0
	for _, q := range questions {
		if s, ok := m.answers()[q.key].(string); ok && s != "" {
			answered++
		}
	}
	return float64(answered) / float64(len(questions))
}

func (m *Mode) recordArtifact(path string) {
	for _, existing := range m.record.Artifacts {
		if existing == path {
			return
		}
	}
	m.record.Artifacts = append(m.record.Artifacts, path)
}
