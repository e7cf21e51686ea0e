package debugger_test

import (
	"bytes"
	"errors"
	"minivm/pkg/codegen"
	"minivm/pkg/debugger"
	"minivm/pkg/parser"
	"minivm/pkg/prompt"
	"minivm/pkg/semantic"
	"minivm/pkg/vm"
	"strings"
	"testing"
)

const branchy = "var a = 5;\nif (a > 3) {\n  a = 1;\n} else {\n  a = 0;\n}"

func newVM(t *testing.T, src string) *vm.VM {
	t.Helper()

	tree, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := semantic.Check(tree); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	seq, err := codegen.Generate(tree)
	if err != nil {
		t.Fatal(err)
	}
	if err := codegen.Link(seq); err != nil {
		t.Fatal(err)
	}
	return vm.New(seq)
}

func session(t *testing.T, m *vm.VM, script string) string {
	t.Helper()

	var out bytes.Buffer
	d := debugger.New(m, prompt.NewScanner(strings.NewReader(script), nil), &out)
	if err := d.Run(); err != nil {
		t.Fatalf("unexpected debugger error: %v", err)
	}
	return out.String()
}

func expectContains(t *testing.T, out string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestHelpAndUnknown(t *testing.T) {
	out := session(t, newVM(t, "var a = 1;"), "help\nfrobnicate\nStep\nquit\n")

	expectContains(t, out,
		"Entering VM debugger. Type 'help' for commands.",
		"Available commands:",
		"  break <line>  Set breakpoint at source line",
		"Unknown command. Type 'help'.",
	)
	if strings.Count(out, "Unknown command") != 2 {
		t.Errorf("expected commands to be case sensitive, got:\n%s", out)
	}
}

func TestBreakpointThenContinue(t *testing.T) {
	m := newVM(t, branchy)

	out := session(t, m, "break 3\ncontinue\nstate\nquit\n")

	expectContains(t, out,
		"Breakpoint set at line 3 (IP=6)",
		"Breakpoint hit at IR[6]",
		"PC = 6",
	)
	if strings.Contains(out, "Program finished") {
		t.Errorf("expected program to stay paused, got:\n%s", out)
	}
	// paused on LOAD_CONST 1, the first instruction of line 3; STORE_VAR a has not run
	if a, _ := m.Lookup("a"); a != 5 {
		t.Errorf("expected a = 5 before the breakpoint, got %d", a)
	}
	if m.State() != vm.Paused {
		t.Errorf("expected PAUSED, got %s", m.State())
	}
}

func TestBreakpointFiresOnEveryResume(t *testing.T) {
	m := newVM(t, branchy)

	out := session(t, m, "break 3\ncontinue\nstep\ncontinue\nquit\n")

	if n := strings.Count(out, "Breakpoint hit at IR[6]"); n != 3 {
		t.Errorf("expected 3 breakpoint hits, got %d:\n%s", n, out)
	}
	if m.PC() != 6 {
		t.Errorf("expected pc 6, got %d", m.PC())
	}
}

func TestStepToEnd(t *testing.T) {
	m := newVM(t, "var a = 1;")

	out := session(t, m, "step\nstate\nstep\nstep\nstate\n")

	expectContains(t, out, "PC = 1\nStack:\n  [0] 1\n", "Program finished or halted.")
	// the session ends at the halt, the trailing state is never read
	if strings.Count(out, "PC = ") != 1 {
		t.Errorf("expected session to end at halt, got:\n%s", out)
	}
	if m.State() != vm.Terminated {
		t.Errorf("expected TERMINATED, got %s", m.State())
	}
}

func TestContinueToEnd(t *testing.T) {
	m := newVM(t, branchy)

	out := session(t, m, "continue\nstate\n")

	expectContains(t, out, "Leaked objects: 1", "Program finished execution.")
	if strings.Contains(out, "PC = ") {
		t.Errorf("expected session to end after continue, got:\n%s", out)
	}
	if a, _ := m.Lookup("a"); a != 1 {
		t.Errorf("expected a = 1, got %d", a)
	}
	if m.State() != vm.Terminated {
		t.Errorf("expected TERMINATED, got %s", m.State())
	}
}

func TestBreakInputErrors(t *testing.T) {
	m := newVM(t, "var a = 1;")

	out := session(t, m, "break\nbreak x\nbreak 42\nquit\n")

	expectContains(t, out, "Usage: break <line>", "No instruction found for line 42")
	if len(m.Breakpoints()) != 0 {
		t.Errorf("expected no breakpoints, got %v", m.Breakpoints())
	}
	if m.PC() != 0 {
		t.Errorf("expected no state change, got pc %d", m.PC())
	}
}

func TestMemstatAndGC(t *testing.T) {
	m := newVM(t, "var x = 1 + 2;")

	out := session(t, m, "step\nstep\nstep\nmemstat\ngc\nleaks\nquit\n")

	expectContains(t, out,
		"Leaked objects: 3",
		"Running Garbage Collector...\nGC Complete.\n--- Leak Report ---\nLeaked objects: 1\n",
	)
	if m.HeapSize() != 1 {
		t.Errorf("expected one live object, got %d", m.HeapSize())
	}
}

func TestEOFActsLikeQuit(t *testing.T) {
	m := newVM(t, "var a = 1; a = 2;")

	out := session(t, m, "step\n")

	if strings.Contains(out, "Program finished") {
		t.Errorf("expected no completion, got:\n%s", out)
	}
	if m.State() != vm.Paused || m.PC() != 1 {
		t.Errorf("expected PAUSED at 1, got %s at %d", m.State(), m.PC())
	}
}

func TestInfiniteLoopInDebugger(t *testing.T) {
	tree, err := parser.ParseSource("var i = 0; while (1) { i = i + 1; }")
	if err != nil {
		t.Fatal(err)
	}
	seq, err := codegen.Generate(tree)
	if err != nil {
		t.Fatal(err)
	}
	if err := codegen.Link(seq); err != nil {
		t.Fatal(err)
	}
	m := vm.New(seq, vm.WithMaxSteps(50))

	out := session(t, m, "continue\nstate\nquit\n")

	expectContains(t, out, "VM halted: possible infinite loop", "PC = ")
	if m.State() != vm.Paused {
		t.Errorf("expected PAUSED, got %s", m.State())
	}
}

func TestFatalRuntimeError(t *testing.T) {
	var fatal error
	saved := vm.Fatal
	vm.Fatal = func(err error) { fatal = err }
	defer func() { vm.Fatal = saved }()

	var out bytes.Buffer
	m := newVM(t, "var z = 1; z = z / 0;")
	d := debugger.New(m, prompt.NewScanner(strings.NewReader("continue\nstate\n"), nil), &out)

	err := d.Run()
	if !errors.Is(err, vm.ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if !errors.Is(fatal, vm.ErrDivisionByZero) {
		t.Errorf("expected fatal hook to be called, got %v", fatal)
	}
	if strings.Contains(out.String(), "PC = ") || strings.Contains(out.String(), "Final State") {
		t.Errorf("expected no state output after a fatal error, got:\n%s", out.String())
	}
	if m.State() != vm.Terminated {
		t.Errorf("expected TERMINATED, got %s", m.State())
	}
}

func TestCustomPrompt(t *testing.T) {
	var out bytes.Buffer
	m := newVM(t, "var a = 1;")
	d := debugger.New(m, prompt.NewScanner(strings.NewReader("quit\n"), &out), &out, debugger.WithPrompt("dbg> "))

	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "dbg> ") {
		t.Errorf("expected custom prompt, got %q", out.String())
	}
}
