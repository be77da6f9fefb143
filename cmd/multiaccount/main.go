package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/sirupsen/logrus"

	"github.com/rednotelab/rednote-mcp/accounts"
	"github.com/rednotelab/rednote-mcp/configs"
	"github.com/rednotelab/rednote-mcp/cookies"
	"github.com/rednotelab/rednote-mcp/xiaohongshu"
)

func resetCookiesFiles() error {
	basePath := cookies.GetCookiesFilePath()
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		name = "cookies"
	}

	// 1) 删除主 cookies 文件
	if err := os.Remove(basePath); err != nil && !os.IsNotExist(err) {
		return err
	}

	// 2) 删除同目录下派生的账号 cookies 文件
	pattern := filepath.Join(dir, fmt.Sprintf("%s_*%s", name, ext))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	for _, p := range matches {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// 这个 CLI 程序用于从命令行直接跑多账号并行采集任务：
// 每个账号一个独立浏览器实例和 cookies 文件，对同一个关键词并行搜索并打印结果，
// 不依赖 MCP 客户端。
func main() {
	var (
		headless     bool
		binPath      string
		keyword      string
		limit        int
		maxRounds    int
		withComments bool
		instances    int
		resetCookies bool
	)

	flag.BoolVar(&headless, "headless", false, "是否无头模式，默认 false（有界面，便于扫码登录）")
	flag.StringVar(&binPath, "bin", "", "浏览器二进制文件路径（可选，不传则使用 ROD_BROWSER_BIN 环境变量）")
	flag.StringVar(&keyword, "keyword", "", "搜索关键词（必填）")
	flag.IntVar(&limit, "limit", xiaohongshu.DefaultSearchLimit,
		fmt.Sprintf("每个账号返回的搜索结果上限，默认 %d", xiaohongshu.DefaultSearchLimit))
	flag.IntVar(&maxRounds, "max-rounds", xiaohongshu.DefaultMaxCommentRounds,
		fmt.Sprintf("采集评论时的滚动轮次上限，默认 %d", xiaohongshu.DefaultMaxCommentRounds))
	flag.BoolVar(&withComments, "with-comments", false, "是否对每条搜索结果的第一条笔记采集评论")
	flag.IntVar(&instances, "instances", 1, "账号实例数量，1 表示单账号，大于 1 表示多账号并行")
	flag.BoolVar(&resetCookies, "reset-cookies", false, "启动前清理 cookies 文件并重新登录")

	flag.Parse()

	if keyword == "" {
		logrus.Fatal("缺少 -keyword 参数")
	}

	if len(binPath) == 0 {
		binPath = os.Getenv("ROD_BROWSER_BIN")
	}

	if resetCookies {
		if err := resetCookiesFiles(); err != nil {
			logrus.Fatalf("failed to reset cookies: %v", err)
		}
		logrus.Info("cookies 已清理（含账号派生文件），将重新登录")
	}

	if headless {
		logrus.Warn("当前以无头模式运行，首次登录时可能无法扫码，建议第一次使用时 headless=false")
	}

	configs.InitHeadless(headless)
	configs.SetBinPath(binPath)

	if instances <= 0 {
		instances = 1
	}
	accountIDs := make([]string, instances)
	for i := range accountIDs {
		accountIDs[i] = fmt.Sprintf("account%d", i+1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	logrus.Infof("开始多账号并行搜索，账号数=%d，关键词=%s", instances, keyword)

	op := func(ctx context.Context, account string, page *rod.Page) error {
		notes, err := xiaohongshu.NewSearchAction(page).Search(ctx, keyword, limit)
		if err != nil {
			return err
		}

		fmt.Printf("账号 %s 搜索到 %d 条笔记：\n", account, len(notes))
		for _, note := range notes {
			fmt.Printf("- [%s] %s (作者: %s, 点赞: %d, 评论: %d)\n",
				note.ID, note.Title, note.Author, note.LikeCount, note.CommentCount)
		}

		if withComments && len(notes) > 0 {
			comments, err := xiaohongshu.NewCommentAction(page).GetComments(ctx, notes[0].Link, maxRounds)
			if err != nil {
				return err
			}
			fmt.Printf("账号 %s 采集到第一条笔记的 %d 条评论\n", account, len(comments))
		}

		return nil
	}

	results, err := accounts.RunParallel(ctx, accountIDs, op)
	if err != nil {
		logrus.WithError(err).Error("并行采集过程中出现错误")
	}

	var successCount int
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Done {
			successCount++
		} else {
			fmt.Printf("账号 %s 失败：%s\n", res.Account, res.Error)
		}
	}

	if successCount == 0 {
		logrus.Fatal("所有账号实例均未成功完成采集，请检查登录状态或网络情况")
	}
}
