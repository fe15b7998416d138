//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CreateTestWorkspace creates a temporary directory holding a config file
// whose database and log live inside it
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir

	config := fmt.Sprintf(`version = 1
database = %q

[search]
debounce = "20ms"
page_size = 10

[log]
file = %q
`, filepath.Join(tmpDir, "messages.db"), filepath.Join(tmpDir, "chatsearch.log"))

	if err := os.WriteFile(tf.ConfigPath(), []byte(config), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return tmpDir, nil
}

// ConfigPath is the config file of the workspace
func (tf *TUITestFramework) ConfigPath() string {
	return filepath.Join(tf.workspace, "config.toml")
}

// ImportMessages writes count messages into chat with the given text prefix
// and loads them with the import command
func (tf *TUITestFramework) ImportMessages(chat int64, count int, text string) error {
	if tf.workspace == "" {
		return fmt.Errorf("workspace not created")
	}

	var b strings.Builder
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "[[message]]\nchat = %d\nid = %d\nauthor = \"alice\"\ntext = \"%s %d\"\ndate = 2024-03-01T12:%02d:00Z\n\n",
			chat, i, text, i, i%60)
	}
	path := filepath.Join(tf.workspace, fmt.Sprintf("chat-%d.toml", chat))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write messages: %w", err)
	}

	out, err := tf.RunCommand("import", "--file", path)
	if err != nil {
		return fmt.Errorf("import failed: %w\n%s", err, out)
	}
	return nil
}

// RunCommand runs a non-interactive command against the workspace config
// and returns its combined output
func (tf *TUITestFramework) RunCommand(args ...string) (string, error) {
	return tf.RunBinary(append([]string{"--config", tf.ConfigPath()}, args...)...)
}

// RunBinary runs the binary with exactly args
func (tf *TUITestFramework) RunBinary(args ...string) (string, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+tf.workspace)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
