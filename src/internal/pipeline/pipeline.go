// Package pipeline drives a conf-mode handler through the four reconciliation
// stages: get_config, verify, generate and apply.
//
// The first failing stage stops the run. Nothing is retried or rolled back;
// the handler is expected to converge when run again with the same
// configuration. A panic inside a stage is converted to an internal error.
package pipeline

import (
	"fmt"

	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
)

// Handler implements the stages for one configuration subtree. R is the
// intent record built by GetConfig and consumed by the other stages.
type Handler[R any] interface {
	GetConfig() (R, error)
	Verify(R) error
	Generate(R) error
	Apply(R) error
}

// Stage names a pipeline step.
type Stage string

const (
	StageGetConfig Stage = "get_config"
	StageVerify    Stage = "verify"
	StageGenerate  Stage = "generate"
	StageApply     Stage = "apply"
)

// State is the progress of a pipeline run.
type State int

const (
	StateInit State = iota
	StateConfigured
	StateVerified
	StateGenerated
	StateApplied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConfigured:
		return "configured"
	case StateVerified:
		return "verified"
	case StateGenerated:
		return "generated"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StageError records which stage of which handler failed.
type StageError struct {
	Handler string
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Runner is a pipeline with its record type erased.
type Runner interface {
	Name() string
	Run() error
}

// Pipeline runs a Handler once.
type Pipeline[R any] struct {
	name    string
	handler Handler[R]
	state   State
	record  R
	failed  Stage
}

var _ Runner = (*Pipeline[struct{}])(nil)

// New returns a pipeline for h in the Init state.
func New[R any](name string, h Handler[R]) *Pipeline[R] {
	return &Pipeline[R]{name: name, handler: h}
}

func (p *Pipeline[R]) Name() string {
	return p.name
}

// State returns the state reached by the last Run.
func (p *Pipeline[R]) State() State {
	return p.state
}

// FailedStage returns the stage that failed, or "".
func (p *Pipeline[R]) FailedStage() Stage {
	return p.failed
}

// Record returns the intent record built by GetConfig.
func (p *Pipeline[R]) Record() R {
	return p.record
}

// Run executes all stages in order.
func (p *Pipeline[R]) Run() error {
	p.state = StateInit
	p.failed = ""

	err := p.step(StageGetConfig, StateConfigured, func() error {
		record, err := p.handler.GetConfig()
		if err != nil {
			return err
		}
		p.record = record
		return nil
	})
	if err != nil {
		return err
	}
	if err := p.step(StageVerify, StateVerified, func() error { return p.handler.Verify(p.record) }); err != nil {
		return err
	}
	if err := p.step(StageGenerate, StateGenerated, func() error { return p.handler.Generate(p.record) }); err != nil {
		return err
	}
	return p.step(StageApply, StateApplied, func() error { return p.handler.Apply(p.record) })
}

func (p *Pipeline[R]) step(stage Stage, next State, fn func() error) error {
	log.Debugf("%s: %s", p.name, stage)
	if err := runWithRecovery(fn); err != nil {
		p.state = StateFailed
		p.failed = stage
		log.Debugf("%s: %s failed: %v", p.name, stage, err)
		return &StageError{Handler: p.name, Stage: stage, Err: err}
	}
	p.state = next
	return nil
}

// runWithRecovery runs fn and converts a panic into an error.
func runWithRecovery(fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.NewInternalError("unexpected failure", fmt.Errorf("panic: %v", recovered))
		}
	}()
	return fn()
}
