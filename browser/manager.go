package browser

import (
	"sync"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xpzouying/headless_browser"
)

// ErrBusy 表示浏览器正在被其他操作占用（非阻塞获取时返回）
var ErrBusy = errors.New("browser busy: another operation holds the context")

// Manager 浏览器实例管理器，确保同一时间只有一个操作在使用浏览器。
// 同一个浏览器上下文内的导航状态是独占的，所有导航/提取调用必须串行。
type Manager struct {
	mu         sync.Mutex
	cond       *sync.Cond // 条件变量，用于等待浏览器释放
	browser    *headless_browser.Browser
	headless   bool
	binPath    string
	cookiePath string
	inUse      bool // 标记浏览器是否正在使用中
}

var (
	globalManager     *Manager
	globalManagerOnce sync.Once
)

// GetGlobalManager 获取全局浏览器管理器（单例）
func GetGlobalManager() *Manager {
	globalManagerOnce.Do(func() {
		m := &Manager{}
		m.cond = sync.NewCond(&m.mu)
		globalManager = m
	})
	return globalManager
}

// NewManager 创建独立的浏览器管理器。
// 多账号并行时每个账号一个 Manager，各自持有独立的 cookies 文件和浏览器进程。
func NewManager(headless bool, binPath, cookiePath string) *Manager {
	m := &Manager{
		headless:   headless,
		binPath:    binPath,
		cookiePath: cookiePath,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// SetConfig 设置浏览器配置
func (m *Manager) SetConfig(headless bool, binPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headless = headless
	m.binPath = binPath
}

// CookiesPath 返回该管理器绑定的 cookies 文件路径，空表示默认账号
func (m *Manager) CookiesPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cookiePath
}

// AcquireBrowser 获取浏览器实例（会阻塞直到浏览器可用）
// 返回浏览器实例和一个 release 函数，使用完毕后必须调用 release 函数释放浏览器
func (m *Manager) AcquireBrowser() (*headless_browser.Browser, func()) {
	m.mu.Lock()

	// 如果浏览器正在使用中，等待其释放
	for m.inUse {
		logrus.Info("浏览器正在使用中，排队等待释放...")
		m.cond.Wait() // 释放锁并等待信号，被唤醒后会重新获得锁
		logrus.Debug("浏览器已释放，继续执行")
	}

	browser := m.ensureBrowserLocked()
	m.inUse = true

	// 返回释放函数
	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inUse = false
		logrus.Debug("浏览器实例已释放，可供其他操作使用")
		m.cond.Signal() // 唤醒一个等待的 goroutine
	}

	m.mu.Unlock()
	return browser, release
}

// TryAcquireBrowser 非阻塞获取浏览器实例。
// 浏览器被占用时立即返回 ErrBusy，调用方可据此直接拒绝本次操作。
func (m *Manager) TryAcquireBrowser() (*headless_browser.Browser, func(), error) {
	m.mu.Lock()
	if m.inUse {
		m.mu.Unlock()
		return nil, nil, ErrBusy
	}

	browser := m.ensureBrowserLocked()
	m.inUse = true

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inUse = false
		m.cond.Signal()
	}

	m.mu.Unlock()
	return browser, release, nil
}

// ensureBrowserLocked 在持有锁的情况下按需创建浏览器实例
func (m *Manager) ensureBrowserLocked() *headless_browser.Browser {
	if m.browser == nil {
		logrus.Info("创建新的浏览器实例...")
		opts := []Option{WithBinPath(m.binPath)}
		if m.cookiePath != "" {
			opts = append(opts, WithCookiesPath(m.cookiePath))
		}
		m.browser = NewBrowser(m.headless, opts...)
		logrus.Info("浏览器实例创建成功")
	}
	return m.browser
}

// CloseBrowser 关闭并清理浏览器实例
func (m *Manager) CloseBrowser() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		logrus.Info("关闭浏览器实例...")
		m.browser.Close()
		m.browser = nil
		m.inUse = false
	}
}

// NewPageWithRelease 获取一个新的页面，并返回页面和释放函数。
// release 会先关闭页面再释放浏览器；所有退出路径（成功、出错、取消）都必须调用，
// 保证页面这一 OS 资源不泄漏，同时浏览器本身保留给后续排队的操作。
func (m *Manager) NewPageWithRelease() (*rod.Page, func()) {
	browser, releaseBrowser := m.AcquireBrowser()

	page := browser.NewPage()
	ConfigurePage(page)

	// 组合释放函数：先关闭页面，再释放浏览器
	release := func() {
		if page != nil {
			page.Close()
		}
		releaseBrowser()
	}

	return page, release
}

// TryNewPageWithRelease 是 NewPageWithRelease 的非阻塞版本，
// 浏览器被占用时返回 ErrBusy。
func (m *Manager) TryNewPageWithRelease() (*rod.Page, func(), error) {
	browser, releaseBrowser, err := m.TryAcquireBrowser()
	if err != nil {
		return nil, nil, err
	}

	page := browser.NewPage()
	ConfigurePage(page)

	release := func() {
		if page != nil {
			page.Close()
		}
		releaseBrowser()
	}

	return page, release, nil
}
