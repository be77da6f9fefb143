package configs

import "sync"

// 进程级配置，main 启动时初始化一次，之后只读。
var (
	mu       sync.RWMutex
	headless = true
	binPath  string
)

// InitHeadless 初始化是否无头模式
func InitHeadless(v bool) {
	mu.Lock()
	defer mu.Unlock()
	headless = v
}

// SetBinPath 设置浏览器二进制文件路径（为空则由 rod 自动探测）
func SetBinPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	binPath = path
}

func IsHeadless() bool {
	mu.RLock()
	defer mu.RUnlock()
	return headless
}

func GetBinPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return binPath
}
