package service_test

import (
	"testing"

	"github.com/armsim/armsim/parser"
	"github.com/armsim/armsim/service"
	"github.com/armsim/armsim/vm"
)

func TestNewDebuggerService(t *testing.T) {
	machine := vm.NewVM()
	svc := service.NewDebuggerService(machine)

	if svc == nil {
		t.Fatal("expected service instance, got nil")
	}

	if svc.GetVM() != machine {
		t.Error("service VM mismatch")
	}
}

func TestDebuggerService_LoadProgram(t *testing.T) {
	machine := vm.NewVM()
	machine.InitializeStack(0x30001000)
	svc := service.NewDebuggerService(machine)

	// Parse simple program with .org directive
	p := parser.NewParser(".org 0x8000\n_start:\nMOV R0, #42\nSWI #0", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	// Load into service
	err = svc.LoadProgram(program, 0x8000)
	if err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	// Verify PC set correctly
	if machine.CPU.PC != 0x8000 {
		t.Errorf("expected PC=0x8000, got 0x%08X", machine.CPU.PC)
	}
}

// TestDebuggerService_AddBreakpoint_RejectsADRLSecondWord checks that a
// breakpoint can't be placed on the second word of an ADRL pseudo-instruction,
// since it isn't an instruction boundary of its own.
func TestDebuggerService_AddBreakpoint_RejectsADRLSecondWord(t *testing.T) {
	machine := vm.NewVM()
	machine.InitializeStack(0x30001000)
	svc := service.NewDebuggerService(machine)

	p := parser.NewParser("ORIGIN 0x8000\nADRL R0, faraway\nSWI #0\nfaraway EQU 0x1800A", "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := svc.LoadProgram(program, 0x8000); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}

	// First word (0x8000) is a valid breakpoint target.
	if err := svc.AddBreakpoint(0x8000); err != nil {
		t.Errorf("expected breakpoint at ADRL's first word to succeed, got: %v", err)
	}

	// Second word (0x8004) must be rejected.
	if err := svc.AddBreakpoint(0x8004); err == nil {
		t.Error("expected breakpoint at ADRL's second word to be rejected")
	}
}
