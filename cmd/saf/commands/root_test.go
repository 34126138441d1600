package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netxfw/saf/internal/runtime"
	"github.com/netxfw/saf/internal/version"
	safErrors "github.com/netxfw/saf/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand executes a cobra command and returns output.
// executeCommand 执行 cobra 命令并返回输出。
func executeCommand(ctx context.Context, cmd *cobra.Command, args ...string) (string, error) {
	defer func() {
		runtime.ConfigPath = ""
		runtime.LogLevel = ""
	}()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// TestRootCommandHelp tests root command help output.
// TestRootCommandHelp 测试根命令帮助输出。
func TestRootCommandHelp(t *testing.T) {
	output, err := executeCommand(context.Background(), RootCmd, "--help")
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Available Commands:")
	for _, name := range []string{"run", "validate", "init", "version"} {
		assert.Contains(t, output, name)
	}
}

// TestVersionCommand tests the version subcommand.
// TestVersionCommand 测试 version 子命令。
func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(context.Background(), RootCmd, "version")
	assert.NoError(t, err)
	assert.Equal(t, "saf "+version.Version+"\n", output)
}

// TestInitAndValidate tests that the generated template validates.
// TestInitAndValidate 测试生成的模板可以通过校验。
func TestInitAndValidate(t *testing.T) {
	dir := t.TempDir()

	output, err := executeCommand(context.Background(), RootCmd, "init", "-c", dir)
	require.NoError(t, err)
	assert.Contains(t, output, filepath.Join(dir, "analytics.yaml"))

	// Refuses to overwrite
	_, err = executeCommand(context.Background(), RootCmd, "init", "-c", dir)
	assert.Error(t, err)

	output, err = executeCommand(context.Background(), RootCmd, "validate", "-c", dir, "-l", "error")
	require.NoError(t, err)
	assert.Contains(t, output, "is valid (1 pipeline(s))")
}

// TestValidateInvalid tests that validation errors are printed and returned.
// TestValidateInvalid 测试校验错误被打印并返回。
func TestValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collectors:
  c:
    plugin: logs
    path: /tmp/x
    log_format: '<A><B>'
processors:
  p:
    plugin: nope
forwarders:
  f:
    plugin: noop
pipelines:
  p1:
    collect: c
    process: p
    forward: f
`), 0644))

	output, err := executeCommand(context.Background(), RootCmd, "validate", "-c", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, safErrors.ErrUnknownPlugin)
	assert.Contains(t, output, "processors.p.plugin")

	_, err = executeCommand(context.Background(), RootCmd, "validate", "-c", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, safErrors.ErrConfigNotFound)
}

// TestRunCommand tests that run forwards events and exits when its context ends.
// TestRunCommand 测试 run 转发事件并在上下文结束时退出。
func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(logPath, []byte("081109 203615 148 INFO dfs.DataNode: hello\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analytics"), []byte(fmt.Sprintf(`
collectors:
  logs-collector:
    plugin: logs
    path: %[1]s/app.log
    log_format: '<Date> <Time> <Pid> <Level> <Component>: <Content>'
processors:
  noop-processor:
    plugin: noop
forwarders:
  disk-forwarder:
    plugin: disk
    path: %[1]s/out
    filename: records
pipelines:
  my-pipeline:
    collect: logs-collector
    process: noop-processor
    forward: disk-forwarder
logging:
  level: error
`, dir)), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := executeCommand(ctx, RootCmd, "run", "-c", dir)
		errc <- err
	}()

	out := filepath.Join(dir, "out", "records")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && bytes.Contains(data, []byte(`"log_line":"081109 203615 148 INFO dfs.DataNode: hello"`))
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not exit")
	}
}
