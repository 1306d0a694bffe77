package config

import (
	"os"
	"path/filepath"
	"sync"
)

const (
	// EnvDataDir 覆盖数据目录
	EnvDataDir = "TODOKIT_DATA_DIR"
	// DefaultDataDirName 位于用户主目录下
	DefaultDataDirName = ".todokit"
)

var (
	dataDirMu     sync.Mutex
	dataDirCached string
)

// GetDataDir 数据根目录，存放 config.yaml 与 todos.db
//
// 首次调用时解析并缓存：TODOKIT_DATA_DIR > ~/.todokit > ./.todokit
func GetDataDir() string {
	dataDirMu.Lock()
	defer dataDirMu.Unlock()
	if dataDirCached == "" {
		dataDirCached = resolveDataDir()
	}
	return dataDirCached
}

// DataPath 拼接数据目录下的文件路径
func DataPath(name string) string {
	return filepath.Join(GetDataDir(), name)
}

// ResetDataDir 清除缓存，测试切换环境变量后使用
func ResetDataDir() {
	dataDirMu.Lock()
	dataDirCached = ""
	dataDirMu.Unlock()
}

func resolveDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}
