package xiaohongshu

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	exploreURL = baseURL + "/explore"

	// DefaultLoginTimeout 等待扫码登录的最长时间
	DefaultLoginTimeout = 120 * time.Second

	// loginPollInterval 扫码结果的轮询间隔
	loginPollInterval = 2 * time.Second

	// 侧边栏「我」入口只有登录后才出现，用它做登录态探测
	jsIsLoggedIn = `() => {
		const sidebarUser = document.querySelector('.user.side-bar-component .channel');
		return !!sidebarUser && sidebarUser.textContent.trim() === '我';
	}`

	jsQrcodeImage = `() => {
		const img = document.querySelector('.qrcode-img');
		return img ? img.src : '';
	}`
)

// LoginAction 扫码登录流程：
// 未登录 -> 展示二维码 -> 轮询扫码结果 -> {登录成功 | 超时}。
// 流程内部不做自动重试，重试与否由调用方决定，避免反复弹出二维码。
type LoginAction struct {
	page *rod.Page
}

func NewLogin(page *rod.Page) *LoginAction {
	return &LoginAction{page: page}
}

// CheckLoginStatus 导航到首页做一次轻量登录态探测
func (a *LoginAction) CheckLoginStatus(ctx context.Context) (bool, error) {
	page := a.page.Context(ctx).Timeout(60 * time.Second)

	if err := page.Navigate(exploreURL); err != nil {
		return false, errors.Wrapf(ErrNavigation, "navigate to explore page: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return false, errors.Wrapf(ErrNavigation, "wait explore page load: %v", err)
	}

	return a.isLoggedIn(page)
}

// isLoggedIn 只检查当前页面状态，不做导航
func (a *LoginAction) isLoggedIn(page *rod.Page) (bool, error) {
	obj, err := page.Eval(jsIsLoggedIn)
	if err != nil {
		return false, errors.Wrapf(ErrParse, "check login marker: %v", err)
	}
	return obj.Value.Bool(), nil
}

// Qrcode 返回登录二维码图片（data URL）。
// 需要先处于未登录状态并且登录弹窗已出现。
func (a *LoginAction) Qrcode(ctx context.Context) (string, error) {
	page := a.page.Context(ctx).Timeout(30 * time.Second)

	if _, err := page.Element(".qrcode-img"); err != nil {
		return "", errors.Wrapf(ErrParse, "qrcode image not found: %v", err)
	}

	obj, err := page.Eval(jsQrcodeImage)
	if err != nil {
		return "", errors.Wrapf(ErrParse, "read qrcode image: %v", err)
	}

	img := obj.Value.Str()
	if img == "" {
		return "", errors.Wrap(ErrParse, "qrcode image src is empty")
	}
	return img, nil
}

// Login 执行完整登录流程：已登录直接返回；否则等待二维码出现，
// 然后按固定间隔轮询登录态，直到成功或超时（ErrLoginTimeout）。
// cookies 的持久化由调用方在返回成功后完成。
func (a *LoginAction) Login(ctx context.Context) error {
	loggedIn, err := a.CheckLoginStatus(ctx)
	if err != nil {
		return err
	}
	if loggedIn {
		logrus.Info("当前已处于登录状态")
		return nil
	}

	// 等待登录弹窗与二维码渲染
	page := a.page.Context(ctx).Timeout(30 * time.Second)
	if _, err := page.Element(".qrcode-img"); err != nil {
		return errors.Wrapf(ErrParse, "qrcode not rendered: %v", err)
	}
	logrus.Info("二维码已展示，等待扫码...")

	loginCtx, cancel := context.WithTimeout(ctx, DefaultLoginTimeout)
	defer cancel()

	if ok := a.WaitForLogin(loginCtx); !ok {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logrus.Error("等待扫码登录超时")
		return errors.Wrapf(ErrLoginTimeout, "qr code not scanned within %v", DefaultLoginTimeout)
	}

	logrus.Info("扫码登录成功")
	return nil
}

// WaitForLogin 轮询登录态直到成功或 ctx 结束，返回是否登录成功。
// 扫码完成后页面会自行跳转，这里不做任何导航。
func (a *LoginAction) WaitForLogin(ctx context.Context) bool {
	page := a.page.Context(ctx)

	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()

	for round := 1; ; round++ {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			loggedIn, err := a.isLoggedIn(page)
			if err != nil {
				// 页面跳转瞬间的求值失败是暂态的，下一轮重试
				logrus.Debugf("登录态轮询第 %d 轮检查失败: %v", round, err)
				continue
			}
			if loggedIn {
				return true
			}
			logrus.Debugf("登录态轮询第 %d 轮：仍未登录", round)
		}
	}
}
