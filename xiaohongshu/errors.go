package xiaohongshu

import "github.com/pkg/errors"

// 错误分类：调用方通过 errors.Is 区分整体失败的种类。
// 列表项级别的解析失败不会出现在这里，它们只记日志并跳过对应条目。
var (
	// ErrSession 浏览器进程/上下文无法启动或挂载
	ErrSession = errors.New("session error")

	// ErrNotLoggedIn 持久化会话缺失或已被平台判定为未登录
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrLoginTimeout 二维码在限定时间内未被扫码确认
	ErrLoginTimeout = errors.New("login timeout")

	// ErrNavigation 页面加载失败、等待超时或跳转到了非预期页面
	ErrNavigation = errors.New("navigation error")

	// ErrNotFound 笔记已删除或仅作者可见
	ErrNotFound = errors.New("note not found")

	// ErrParse 预期的 DOM 结构缺失或已改版
	ErrParse = errors.New("parse error")

	// ErrSessionBusy 浏览器上下文被其他操作占用
	ErrSessionBusy = errors.New("session busy")
)
