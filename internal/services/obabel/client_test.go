package obabel

import (
	"context"
	"errors"
	"testing"

	"mdprep/internal/services"
	"mdprep/internal/testsupport"
)

func newTestClient(t *testing.T, exec *testsupport.ScriptedExecutor) *Client {
	t.Helper()
	client, err := New("obabel", 60, 120, MinimizeParams{
		ForceField: "MMFF94",
		Steps:      1000,
		Dielectric: 78.0,
	}, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestConvertArgs(t *testing.T) {
	exec := &testsupport.ScriptedExecutor{}
	client := newTestClient(t, exec)

	if err := client.Convert(context.Background(), "/s/1/MOA.sdf", "/s/1/MOA.mol2"); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	calls := exec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	call := calls[0]
	if call.Binary != "obabel" {
		t.Fatalf("unexpected binary: %q", call.Binary)
	}
	want := []string{"/s/1/MOA.sdf", "-O", "/s/1/MOA.mol2"}
	if len(call.Args) != len(want) {
		t.Fatalf("unexpected args: %v", call.Args)
	}
	for i := range want {
		if call.Args[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q", i, call.Args[i], want[i])
		}
	}
	if call.Timeout.Seconds() != 60 {
		t.Fatalf("unexpected timeout: %v", call.Timeout)
	}
}

func TestMinimizeArgs(t *testing.T) {
	exec := &testsupport.ScriptedExecutor{}
	client := newTestClient(t, exec)

	if err := client.Minimize(context.Background(), "/s/1/MOB.mol2"); err != nil {
		t.Fatalf("Minimize: %v", err)
	}

	call := exec.Calls()[0]
	want := []string{"/s/1/MOB.mol2", "-O", "/s/1/MOB.mol2", "--minimize", "--ff", "MMFF94", "--steps", "1000", "--dielectric", "78"}
	if len(call.Args) != len(want) {
		t.Fatalf("unexpected args: %v", call.Args)
	}
	for i := range want {
		if call.Args[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q", i, call.Args[i], want[i])
		}
	}
	if call.Timeout.Seconds() != 120 {
		t.Fatalf("unexpected timeout: %v", call.Timeout)
	}
}

func TestConvertToolFailure(t *testing.T) {
	exec := &testsupport.ScriptedExecutor{
		Handler: func(cmd services.Command) (services.Result, error) {
			return services.Result{Stderr: "0 molecules converted"}, errors.New("exit status 1")
		},
	}
	client := newTestClient(t, exec)

	err := client.Convert(context.Background(), "in.sdf", "out.mol2")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestConvertValidatesPaths(t *testing.T) {
	client := newTestClient(t, &testsupport.ScriptedExecutor{})
	if err := client.Convert(context.Background(), "", "out.mol2"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New(" ", 60, 120, MinimizeParams{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
