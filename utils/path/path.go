package path

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 專案根目錄，用來解析相對的 --env / --config 路徑。
// 順序：APP_ROOT 環境變數 → 原始碼所在目錄（go run）→ 目前工作目錄（部署後的 binary）
func RootPath() string {
	if root := os.Getenv("APP_ROOT"); root != "" {
		return root
	}
	if _, filename, _, ok := runtime.Caller(0); ok {
		// /project/utils/path/path.go → /project
		root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
		if exists, _ := Exists(filepath.Join(root, "go.mod")); exists {
			return root
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Exists 路径是否存在
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
