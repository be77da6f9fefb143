package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/sirupsen/logrus"

	"github.com/rednotelab/rednote-mcp/browser"
	"github.com/rednotelab/rednote-mcp/configs"
	"github.com/rednotelab/rednote-mcp/cookies"
	"github.com/rednotelab/rednote-mcp/xiaohongshu"
)

// DefaultLoginWait 并行实例等待扫码登录的统一时间窗口
const DefaultLoginWait = 60 * time.Second

// Operation 在某个账号已登录的页面上执行的一次采集操作
type Operation func(ctx context.Context, account string, page *rod.Page) error

// Result 单个账号实例的执行结果
type Result struct {
	Account string `json:"account"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
}

// RunParallel 为每个账号启动独立的浏览器实例并行执行同一个操作。
// 每个实例拥有独立的 cookies 文件和登录会话，互不共享浏览器上下文；
// 未登录的实例进入统一的扫码等待窗口，窗口内没登录则该实例失败。
func RunParallel(ctx context.Context, accountIDs []string, op Operation) ([]*Result, error) {
	if len(accountIDs) == 0 {
		accountIDs = []string{"account1"}
	}

	results := make([]*Result, len(accountIDs))
	var wg sync.WaitGroup

	// 登录等待窗口对所有实例共用，避免单个实例无限期占着二维码
	loginCtx, cancel := context.WithTimeout(ctx, DefaultLoginWait)
	defer cancel()

	for i, account := range accountIDs {
		idx := i
		results[idx] = &Result{Account: account}

		wg.Add(1)
		go func(res *Result) {
			defer wg.Done()

			cookiePath := cookies.GetAccountCookiesFilePath(res.Account)
			logrus.WithFields(logrus.Fields{
				"account":      res.Account,
				"cookies_path": cookiePath,
			}).Info("启动账号实例")

			// 为当前账号创建独立浏览器
			b := browser.NewBrowser(configs.IsHeadless(),
				browser.WithBinPath(configs.GetBinPath()),
				browser.WithCookiesPath(cookiePath),
			)
			page := b.NewPage()
			defer func() {
				// 关闭页面和浏览器，避免资源泄漏
				if page != nil {
					page.Close()
				}
				if b != nil {
					b.Close()
				}
			}()
			browser.ConfigurePage(page)

			loginAction := xiaohongshu.NewLogin(page)

			// 1. 先用已有 cookies 探测登录态
			loggedIn, err := loginAction.CheckLoginStatus(ctx)
			if err != nil {
				res.Error = err.Error()
				return
			}

			// 2. 未登录时进入扫码等待窗口
			if !loggedIn {
				logrus.WithField("account", res.Account).Info("未登录，等待扫码")
				if ok := loginAction.WaitForLogin(loginCtx); !ok {
					res.Error = "登录等待超时或被取消"
					return
				}
				logrus.WithField("account", res.Account).Info("扫码登录成功")
			}

			// 登录确认后立即保存 cookies
			if err := browser.SavePageCookies(page, cookiePath); err != nil {
				logrus.WithError(err).WithField("account", res.Account).Warn("保存 cookies 失败")
			}

			if err := op(ctx, res.Account, page); err != nil {
				res.Error = err.Error()
				return
			}
			res.Done = true

			// 操作完成后再保存一次，保证会话续期落盘
			if err := browser.SavePageCookies(page, cookiePath); err != nil {
				logrus.WithError(err).WithField("account", res.Account).Warn("保存 cookies 失败")
			}
		}(results[idx])
	}

	wg.Wait()

	// 至少要有一个账号完成操作
	var hasSuccess bool
	for _, res := range results {
		if res != nil && res.Done {
			hasSuccess = true
			break
		}
	}
	if !hasSuccess {
		return results, fmt.Errorf("没有任何账号实例完成操作")
	}

	return results, nil
}
