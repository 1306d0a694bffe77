//go:build integration
// +build integration

package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// EnvServerBinary 指向已编译的 todokit 服务时跳过构建
const EnvServerBinary = "TODOKIT_TEST_BINARY"

var (
	// BinaryPath 被测服务二进制路径
	BinaryPath string

	buildDir string
)

// BuildDaemon 准备被测服务二进制，TestMain 中调用一次
func BuildDaemon() error {
	if prebuilt := os.Getenv(EnvServerBinary); prebuilt != "" {
		if _, err := os.Stat(prebuilt); err != nil {
			return fmt.Errorf("%s points to a missing binary: %w", EnvServerBinary, err)
		}
		BinaryPath = prebuilt
		return nil
	}

	dir, err := os.MkdirTemp("", "todokit-it-")
	if err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	buildDir = dir

	name := "todokit-server"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	BinaryPath = filepath.Join(dir, name)

	cmd := exec.Command("go", "build", "-o", BinaryPath, "./cmd/server")
	cmd.Dir = moduleRoot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build ./cmd/server: %w", err)
	}
	return nil
}

// Cleanup 删除 BuildDaemon 产生的临时目录，预编译的二进制不动
func Cleanup() {
	if buildDir != "" {
		_ = os.RemoveAll(buildDir)
	}
}

// RequireDaemonBinary 二进制不可用时终止当前测试
func RequireDaemonBinary(t *testing.T) {
	t.Helper()
	if BinaryPath == "" {
		t.Fatal("server binary not prepared, TestMain must call BuildDaemon")
	}
	if _, err := os.Stat(BinaryPath); err != nil {
		t.Fatalf("server binary unavailable: %v", err)
	}
}

// moduleRoot 本文件位于 test/integration/framework
func moduleRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..")
}
