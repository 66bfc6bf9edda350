package core

import (
	"context"
	"errors"
	"testing"
)

func noopHandler(ctx context.Context, inv Invocation) (string, error) {
	return "", nil
}

func testCommand(name string, aliases ...string) *Command {
	return &Command{Name: name, Aliases: aliases, MaxArgs: -1, Usage: name, Run: noopHandler}
}

func TestLookupExactName(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"ls", "put", "get", "open"} {
		if err := r.Register(testCommand(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	for _, name := range []string{"ls", "put", "get", "open"} {
		cmd, err := r.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if cmd.Name != name {
			t.Fatalf("lookup %s returned %s", name, cmd.Name)
		}
	}
}

func TestLookupAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls", "dir")); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmd, err := r.Lookup("dir")
	if err != nil {
		t.Fatalf("lookup alias: %v", err)
	}
	if cmd.Name != "ls" {
		t.Fatalf("alias resolved to %s, want ls", cmd.Name)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("reset")); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmd, err := r.Lookup("RESET")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cmd.Name != "reset" {
		t.Fatalf("resolved to %s, want reset", cmd.Name)
	}
}

func TestLookupUniquePrefix(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("sysinfo")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(testCommand("sync")); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmd, err := r.Lookup("sys")
	if err != nil {
		t.Fatalf("lookup prefix: %v", err)
	}
	if cmd.Name != "sysinfo" {
		t.Fatalf("prefix resolved to %s, want sysinfo", cmd.Name)
	}
}

func TestLookupAmbiguousPrefix(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(testCommand("list")); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := r.Lookup("l")
	if err == nil {
		t.Fatalf("expected ambiguity error")
	}
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 || amb.Candidates[0] != "list" || amb.Candidates[1] != "ls" {
		t.Fatalf("unexpected candidates: %v", amb.Candidates)
	}
}

func TestExactNameWinsOverPrefix(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(testCommand("lsync")); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmd, err := r.Lookup("ls")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cmd.Name != "ls" {
		t.Fatalf("resolved to %s, want ls", cmd.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls")); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := r.Lookup("bogus_cmd")
	if err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if !errors.Is(err, errUnknownCommand) {
		t.Fatalf("expected errUnknownCommand, got %v", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(testCommand("ls")); err == nil {
		t.Fatalf("expected error on duplicate name")
	}
}

func TestRegisterAliasCollision(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ls", "dir")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(testCommand("dir")); err == nil {
		t.Fatalf("expected error on name colliding with alias")
	}
	if err := r.Register(testCommand("rm", "dir")); err == nil {
		t.Fatalf("expected error on duplicate alias")
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Fatalf("expected error for nil command")
	}
	if err := r.Register(&Command{Name: "x"}); err == nil {
		t.Fatalf("expected error for nil handler")
	}
	if err := r.Register(&Command{Name: "", Run: noopHandler}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := r.Register(&Command{Name: "x", MinArgs: 2, MaxArgs: 1, Run: noopHandler}); err == nil {
		t.Fatalf("expected error for max below min")
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"rm", "get", "put"} {
		if err := r.Register(testCommand(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	names := r.Names()
	want := []string{"get", "put", "rm"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
