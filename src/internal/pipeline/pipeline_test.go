package pipeline

import (
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/echoreply/ifconf/src/internal/errors"
)

type record struct {
	Name string
}

type fakeHandler struct {
	calls []string

	getConfigErr error
	verifyErr    error
	generateErr  error
	applyErr     error
	panicIn      Stage
}

func (f *fakeHandler) GetConfig() (record, error) {
	f.calls = append(f.calls, "get_config")
	if f.panicIn == StageGetConfig {
		panic("boom")
	}
	return record{Name: "eth0"}, f.getConfigErr
}

func (f *fakeHandler) Verify(r record) error {
	f.calls = append(f.calls, "verify:"+r.Name)
	if f.panicIn == StageVerify {
		var m map[string]int
		m["x"] = 1
	}
	return f.verifyErr
}

func (f *fakeHandler) Generate(r record) error {
	f.calls = append(f.calls, "generate:"+r.Name)
	return f.generateErr
}

func (f *fakeHandler) Apply(r record) error {
	f.calls = append(f.calls, "apply:"+r.Name)
	if f.panicIn == StageApply {
		panic(errors.New("apply exploded"))
	}
	return f.applyErr
}

func TestPipelineSuccess(t *testing.T) {
	h := &fakeHandler{}
	p := New[record]("interfaces-test", h)

	if p.State() != StateInit {
		t.Errorf("Expected init state, got %v", p.State())
	}
	if err := p.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	expected := []string{"get_config", "verify:eth0", "generate:eth0", "apply:eth0"}
	if !reflect.DeepEqual(h.calls, expected) {
		t.Errorf("Expected calls %v, got %v", expected, h.calls)
	}
	if p.State() != StateApplied {
		t.Errorf("Expected applied state, got %v", p.State())
	}
	if p.Record().Name != "eth0" {
		t.Errorf("Expected record to be kept, got %+v", p.Record())
	}
	if p.Name() != "interfaces-test" {
		t.Errorf("Expected name interfaces-test, got %s", p.Name())
	}
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	validation := apperrors.Validationf("VRF %q does not exist", "RED")

	tests := []struct {
		name      string
		handler   *fakeHandler
		stage     Stage
		calls     []string
		wantErrIs error
	}{
		{
			name:      "missing identifier",
			handler:   &fakeHandler{getConfigErr: apperrors.NewMissingIdentifierError("Interface")},
			stage:     StageGetConfig,
			calls:     []string{"get_config"},
			wantErrIs: apperrors.ErrMissingIdentifier,
		},
		{
			name:      "verify",
			handler:   &fakeHandler{verifyErr: validation},
			stage:     StageVerify,
			calls:     []string{"get_config", "verify:eth0"},
			wantErrIs: apperrors.ErrValidation,
		},
		{
			name:      "generate",
			handler:   &fakeHandler{generateErr: apperrors.NewRenderError("write failed", nil)},
			stage:     StageGenerate,
			calls:     []string{"get_config", "verify:eth0", "generate:eth0"},
			wantErrIs: apperrors.ErrRender,
		},
		{
			name:      "apply",
			handler:   &fakeHandler{applyErr: &apperrors.CommandError{Command: "ip link", ExitStatus: 1}},
			stage:     StageApply,
			calls:     []string{"get_config", "verify:eth0", "generate:eth0", "apply:eth0"},
			wantErrIs: apperrors.ErrCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New[record]("h", tt.handler)
			err := p.Run()

			if !errors.Is(err, tt.wantErrIs) {
				t.Errorf("Expected error matching %v, got %v", tt.wantErrIs, err)
			}
			var se *StageError
			if !errors.As(err, &se) || se.Stage != tt.stage {
				t.Errorf("Expected StageError at %s, got %v", tt.stage, err)
			}
			if p.State() != StateFailed || p.FailedStage() != tt.stage {
				t.Errorf("Expected failed state at %s, got %v/%s", tt.stage, p.State(), p.FailedStage())
			}
			if !reflect.DeepEqual(tt.handler.calls, tt.calls) {
				t.Errorf("Expected calls %v, got %v", tt.calls, tt.handler.calls)
			}
		})
	}
}

func TestPipelineRecoversPanics(t *testing.T) {
	for _, stage := range []Stage{StageGetConfig, StageVerify, StageApply} {
		t.Run(string(stage), func(t *testing.T) {
			p := New[record]("h", &fakeHandler{panicIn: stage})
			err := p.Run()

			if !errors.Is(err, apperrors.ErrInternal) {
				t.Errorf("Expected internal error, got %v", err)
			}
			if p.FailedStage() != stage {
				t.Errorf("Expected failure at %s, got %s", stage, p.FailedStage())
			}
		})
	}
}

func TestPipelineRerun(t *testing.T) {
	h := &fakeHandler{applyErr: errors.New("transient")}
	p := New[record]("h", h)

	if err := p.Run(); err == nil {
		t.Fatalf("Expected first run to fail")
	}
	h.applyErr = nil
	if err := p.Run(); err != nil {
		t.Fatalf("Expected second run to succeed, got %v", err)
	}
	if p.State() != StateApplied || p.FailedStage() != "" {
		t.Errorf("Expected clean state after rerun, got %v/%s", p.State(), p.FailedStage())
	}
}

func TestStateString(t *testing.T) {
	if StateVerified.String() != "verified" || StateFailed.String() != "failed" {
		t.Errorf("Unexpected state names")
	}
	if State(42).String() != "State(42)" {
		t.Errorf("Expected fallback formatting, got %s", State(42).String())
	}
}
