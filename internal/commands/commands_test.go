package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mpsh/internal/core"
	"mpsh/internal/device"
	"mpsh/internal/history"
)

// fakeConn имитирует соединение с платой и записывает вызванные
// операции в журнал вида "op arg1 arg2".
type fakeConn struct {
	target string
	lsOut  string
	lsErr  error
	putErr error
	closed bool
	ops    []string
}

func (f *fakeConn) log(op string, args ...string) {
	f.ops = append(f.ops, strings.TrimSpace(op+" "+strings.Join(args, " ")))
}

func (f *fakeConn) Target() string { return f.target }
func (f *fakeConn) Ls(ctx context.Context, dir string, long bool) (string, error) {
	f.log("ls", dir)
	return f.lsOut, f.lsErr
}
func (f *fakeConn) Cat(ctx context.Context, remote string) (string, error) {
	f.log("cat", remote)
	return "print('hi')\n", nil
}
func (f *fakeConn) Put(ctx context.Context, local, remote string) error {
	f.log("put", local, remote)
	return f.putErr
}
func (f *fakeConn) Get(ctx context.Context, remote, local string) error {
	f.log("get", remote, local)
	return nil
}
func (f *fakeConn) Rm(ctx context.Context, remote string) error {
	f.log("rm", remote)
	return nil
}
func (f *fakeConn) Mkdir(ctx context.Context, remote string) error {
	f.log("mkdir", remote)
	return nil
}
func (f *fakeConn) Rmdir(ctx context.Context, remote string) error {
	f.log("rmdir", remote)
	return nil
}
func (f *fakeConn) Run(ctx context.Context, local string) (string, error) {
	f.log("run", local)
	return "script output", nil
}
func (f *fakeConn) Reset(ctx context.Context) error {
	f.log("reset")
	return nil
}
func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

type fakeStore struct {
	entries []history.Entry
	saved   []history.Entry
}

func (f *fakeStore) Save(ctx context.Context, e history.Entry) error {
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeStore) Close() error { return nil }

// fakeRunner подменяет внешние инструменты для команд компиляции.
type fakeRunner struct {
	args [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.args = append(f.args, args)
	return "", "", nil
}

type fixture struct {
	disp *core.Dispatcher
	conn *fakeConn
	env  *Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := &fakeConn{target: "/dev/ttyUSB0"}
	env := &Env{
		Dial: func(ctx context.Context, target string) (device.Conn, error) {
			conn.target = target
			return conn, nil
		},
		ListPorts: func() ([]device.PortInfo, error) {
			return []device.PortInfo{{Name: "/dev/ttyUSB0", Description: "CP2104 USB to UART", IsUSB: true}}, nil
		},
		Compiler:     &device.Compiler{Run: &fakeRunner{}},
		Flasher:      &device.Flasher{Run: &fakeRunner{}},
		DefaultPort:  "/dev/ttyUSB0",
		HistoryLimit: 50,
		Version:      "test",
	}
	reg, err := NewRegistry(env)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		disp: core.NewDispatcher(reg, core.NewSession(), log, nil),
		conn: conn,
		env:  env,
	}
}

func (f *fixture) mustOK(t *testing.T, line string) core.Result {
	t.Helper()
	res := f.disp.Dispatch(context.Background(), line)
	if res.Status != core.StatusOK {
		t.Fatalf("dispatch(%q) failed: %#v", line, res)
	}
	return res
}

func (f *fixture) lastOp(t *testing.T) string {
	t.Helper()
	if len(f.conn.ops) == 0 {
		t.Fatalf("no board operation performed")
	}
	return f.conn.ops[len(f.conn.ops)-1]
}

func TestOpenCloseLifecycle(t *testing.T) {
	f := newFixture(t)

	res := f.mustOK(t, "open")
	if !strings.Contains(res.Output, "/dev/ttyUSB0") {
		t.Fatalf("open output: %q", res.Output)
	}
	if !f.disp.Session().Connected() {
		t.Fatalf("session not connected after open")
	}

	res = f.mustOK(t, "close")
	if !strings.Contains(res.Output, "disconnected") {
		t.Fatalf("close output: %q", res.Output)
	}
	if f.disp.Session().Connected() || !f.conn.closed {
		t.Fatalf("connection not released on close")
	}
}

func TestOpenWithExplicitTarget(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open ser:/dev/ttyACM0")
	if f.conn.target != "ser:/dev/ttyACM0" {
		t.Fatalf("dial target = %q", f.conn.target)
	}
}

func TestPutDefaultsRemoteName(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "blink.py")
	if err := os.WriteFile(local, []byte("pass\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f.mustOK(t, "open")
	f.mustOK(t, fmt.Sprintf("put %q", local))
	if got, want := f.lastOp(t), "put "+local+" /blink.py"; got != want {
		t.Fatalf("op = %q, want %q", got, want)
	}
}

func TestPutFallsBackToSrcDir(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("pass\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	f.env.SrcDir = dir

	f.mustOK(t, "open")
	f.mustOK(t, "put main.py")
	want := "put " + filepath.Join(dir, "main.py") + " /main.py"
	if got := f.lastOp(t); got != want {
		t.Fatalf("op = %q, want %q", got, want)
	}
}

func TestGetDefaultsLocalName(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	f.mustOK(t, "get /lib/util.py")
	if got, want := f.lastOp(t), "get /lib/util.py util.py"; got != want {
		t.Fatalf("op = %q, want %q", got, want)
	}
}

func TestCdTracksRemoteDir(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")

	f.mustOK(t, "cd lib")
	if got := f.disp.Session().Cwd(); got != "/lib" {
		t.Fatalf("cwd = %q after cd lib", got)
	}

	// Относительные пути разрешаются против нового cwd.
	f.mustOK(t, "cat util.py")
	if got, want := f.lastOp(t), "cat /lib/util.py"; got != want {
		t.Fatalf("op = %q, want %q", got, want)
	}

	f.mustOK(t, "cd ..")
	if got := f.disp.Session().Cwd(); got != "/" {
		t.Fatalf("cwd = %q after cd ..", got)
	}
}

func TestCdKeepsCwdOnFailure(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	f.conn.lsErr = &device.ToolError{Tool: "ampy", Op: "ls", Stderr: "No such directory"}

	res := f.disp.Dispatch(context.Background(), "cd missing")
	if res.Status != core.StatusError || res.ErrorCode != core.CodeTransportFailed {
		t.Fatalf("unexpected result: %#v", res)
	}
	if got := f.disp.Session().Cwd(); got != "/" {
		t.Fatalf("cwd changed to %q on failed cd", got)
	}
}

func TestFileCommandsNeedConnection(t *testing.T) {
	f := newFixture(t)
	for _, line := range []string{"ls", "cat main.py", "put main.py", "reset"} {
		res := f.disp.Dispatch(context.Background(), line)
		if res.ErrorCode != core.CodeNotConnected {
			t.Fatalf("dispatch(%q) = %#v, want not_connected", line, res)
		}
	}
	if len(f.conn.ops) != 0 {
		t.Fatalf("board touched without connection: %v", f.conn.ops)
	}
}

func TestMrmFiltersByRegex(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	f.conn.lsOut = "/boot.py\n/main.py\n/data.txt\n"
	f.conn.ops = nil

	res := f.mustOK(t, `mrm \.py$`)
	var rms []string
	for _, op := range f.conn.ops {
		if strings.HasPrefix(op, "rm ") {
			rms = append(rms, op)
		}
	}
	if len(rms) != 2 || rms[0] != "rm /boot.py" || rms[1] != "rm /main.py" {
		t.Fatalf("rm ops = %v", rms)
	}
	if strings.Contains(res.Output, "data.txt") {
		t.Fatalf("unmatched file in output: %q", res.Output)
	}
}

func TestMrmNoMatches(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	f.conn.lsOut = "/data.txt\n"

	res := f.mustOK(t, `mrm \.py$`)
	if res.Output != "no remote files matched" {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestMputStopsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pass\n"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	f.mustOK(t, "open")
	f.conn.putErr = errors.New("upload failed")

	res := f.disp.Dispatch(context.Background(), `mput \.py$`)
	if res.Status != core.StatusError {
		t.Fatalf("expected error, got %#v", res)
	}
}

func TestSyncDryRun(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pass\n"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	f.mustOK(t, "open")
	f.conn.ops = nil

	res := f.mustOK(t, fmt.Sprintf("sync -n %q", dir))
	if got := strings.Count(res.Output, "would put"); got != 2 {
		t.Fatalf("dry run output: %q", res.Output)
	}
	for _, op := range f.conn.ops {
		if strings.HasPrefix(op, "put ") {
			t.Fatalf("dry run uploaded a file: %v", f.conn.ops)
		}
	}

	res = f.mustOK(t, fmt.Sprintf("sync %q", dir))
	if !strings.Contains(res.Output, "synced 2 files") {
		t.Fatalf("sync output: %q", res.Output)
	}
}

func TestSyncWithoutSourceDir(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	res := f.disp.Dispatch(context.Background(), "sync")
	if res.Status != core.StatusError || res.ErrorCode != core.CodeCommandFailed {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestExecWritesStatementToScript(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")

	res := f.mustOK(t, "exec print(42)")
	if res.Output != "script output" {
		t.Fatalf("output = %q", res.Output)
	}
	op := f.lastOp(t)
	if !strings.HasPrefix(op, "run ") || !strings.Contains(op, "mpsh-exec-") {
		t.Fatalf("op = %q, want run of a temp script", op)
	}
}

func TestResetCommand(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	res := f.mustOK(t, "reset")
	if res.Output != "device reset" {
		t.Fatalf("output = %q", res.Output)
	}
	if got := f.lastOp(t); got != "reset" {
		t.Fatalf("op = %q", got)
	}
}

func TestPutcUploadsBytecode(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "blink.py")
	if err := os.WriteFile(local, []byte("pass\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f.mustOK(t, "open")
	res := f.mustOK(t, fmt.Sprintf("putc %q", local))
	if !strings.Contains(res.Output, "/blink.mpy") {
		t.Fatalf("output = %q", res.Output)
	}
	op := f.lastOp(t)
	if !strings.HasPrefix(op, "put ") || !strings.HasSuffix(op, " /blink.mpy") {
		t.Fatalf("op = %q, want upload as /blink.mpy", op)
	}
}

func TestFlashRequiresClosedConnection(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	res := f.disp.Dispatch(context.Background(), "erase")
	if res.Status != core.StatusError || !strings.Contains(res.Message, "close the connection") {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestEraseUsesDefaultPort(t *testing.T) {
	f := newFixture(t)
	run := f.env.Flasher.Run.(*fakeRunner)
	f.mustOK(t, "erase")
	if len(run.args) != 1 {
		t.Fatalf("esptool runs: %d", len(run.args))
	}
	want := "--chip esp32 --port /dev/ttyUSB0 erase_flash"
	if got := strings.Join(run.args[0], " "); got != want {
		t.Fatalf("esptool args = %q, want %q", got, want)
	}
}

func TestPortsListing(t *testing.T) {
	f := newFixture(t)
	res := f.mustOK(t, "ports")
	if !strings.Contains(res.Output, "usb") || !strings.Contains(res.Output, "/dev/ttyUSB0") {
		t.Fatalf("ports output: %q", res.Output)
	}
}

func TestHelpListsCommands(t *testing.T) {
	f := newFixture(t)
	res := f.mustOK(t, "help")
	for _, name := range []string{"open", "ls", "put", "exit"} {
		if !strings.Contains(res.Output, name) {
			t.Fatalf("help output lacks %q:\n%s", name, res.Output)
		}
	}
}

func TestHelpSingleCommand(t *testing.T) {
	f := newFixture(t)
	res := f.mustOK(t, "help rm")
	if !strings.Contains(res.Output, "usage: rm") || !strings.Contains(res.Output, "del") {
		t.Fatalf("help rm output: %q", res.Output)
	}
}

func TestEcho(t *testing.T) {
	f := newFixture(t)
	res := f.mustOK(t, `echo hello "micro python"`)
	if res.Output != "hello micro python" {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestExitClosesSession(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t, "open")
	res := f.disp.Dispatch(context.Background(), "exit")
	if res.Status != core.StatusOK || res.ErrorCode != core.CodeExit || res.Output != "bye" {
		t.Fatalf("unexpected result: %#v", res)
	}
	if !f.conn.closed {
		t.Fatalf("exit did not close the connection")
	}
}

func TestHistoryCommand(t *testing.T) {
	f := newFixture(t)
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f.env.History = &fakeStore{entries: []history.Entry{
		{Line: "ls", Status: "ok", TS: ts},
		{Line: "bogus", Status: "error", ErrorCode: "unknown_command", TS: ts},
	}}

	res := f.mustOK(t, "history")
	if !strings.Contains(res.Output, "ls") || !strings.Contains(res.Output, "[error] bogus") {
		t.Fatalf("history output: %q", res.Output)
	}

	res = f.mustOK(t, "history 1")
	if strings.Contains(res.Output, "bogus") {
		t.Fatalf("limit ignored: %q", res.Output)
	}
}

func TestHistoryUnavailable(t *testing.T) {
	f := newFixture(t)
	res := f.disp.Dispatch(context.Background(), "history")
	if res.Status != core.StatusError {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestVersionCommand(t *testing.T) {
	f := newFixture(t)
	res := f.mustOK(t, "version")
	if res.Output != "test" {
		t.Fatalf("output = %q", res.Output)
	}
}
