package main

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rednotelab/rednote-mcp/browser"
	"github.com/rednotelab/rednote-mcp/cookies"
	"github.com/rednotelab/rednote-mcp/pkg/downloader"
	"github.com/rednotelab/rednote-mcp/xiaohongshu"
)

// XiaohongshuService 是对外暴露的纯函数式操作层。
// 每个操作从浏览器管理器取一个页面（独占，排队串行），
// 用完在所有退出路径上释放；cookies 在登录成功和操作完成后滑动续期。
type XiaohongshuService struct {
	manager *browser.Manager
}

func NewXiaohongshuService() *XiaohongshuService {
	return &XiaohongshuService{
		manager: browser.GetGlobalManager(),
	}
}

// LoginStatusResult 登录状态检查结果
type LoginStatusResult struct {
	IsLoggedIn bool `json:"is_logged_in"`
}

// LoginResult 登录流程结果，Status 为 ok 或 timeout
type LoginResult struct {
	Status string `json:"status"`
}

// LoginQrcodeResult 登录二维码信息
type LoginQrcodeResult struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	Img        string `json:"img,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}

// PublishRequest 图文发布请求
type PublishRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// PublishResult 发布结果
type PublishResult struct {
	Title  string `json:"title"`
	Images int    `json:"images"`
	Status string `json:"status"`
}

// cookiesPath 返回当前会话使用的 cookies 文件路径
func (s *XiaohongshuService) cookiesPath() string {
	if p := s.manager.CookiesPath(); p != "" {
		return p
	}
	return cookies.GetCookiesFilePath()
}

// CheckLoginStatus 检查当前会话是否已登录
func (s *XiaohongshuService) CheckLoginStatus(ctx context.Context) (*LoginStatusResult, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	loggedIn, err := xiaohongshu.NewLogin(page).CheckLoginStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &LoginStatusResult{IsLoggedIn: loggedIn}, nil
}

// Login 执行扫码登录。二维码超时不算内部错误，
// 以 status=timeout 返回，是否重试由调用方决定。
func (s *XiaohongshuService) Login(ctx context.Context) (*LoginResult, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	action := xiaohongshu.NewLogin(page)
	if err := action.Login(ctx); err != nil {
		if errors.Is(err, xiaohongshu.ErrLoginTimeout) {
			return &LoginResult{Status: "timeout"}, nil
		}
		return nil, err
	}

	// 登录成功，整体持久化 cookie jar
	if err := browser.SavePageCookies(page, s.cookiesPath()); err != nil {
		logrus.WithError(err).Error("登录成功但保存 cookies 失败")
		return nil, errors.Wrapf(xiaohongshu.ErrSession, "persist cookies: %v", err)
	}

	return &LoginResult{Status: "ok"}, nil
}

// GetLoginQrcode 获取登录二维码（已登录时直接说明，不返回图片）
func (s *XiaohongshuService) GetLoginQrcode(ctx context.Context) (*LoginQrcodeResult, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	action := xiaohongshu.NewLogin(page)

	loggedIn, err := action.CheckLoginStatus(ctx)
	if err != nil {
		return nil, err
	}
	if loggedIn {
		return &LoginQrcodeResult{IsLoggedIn: true}, nil
	}

	img, err := action.Qrcode(ctx)
	if err != nil {
		return nil, err
	}

	return &LoginQrcodeResult{
		IsLoggedIn: false,
		Img:        img,
		Timeout:    xiaohongshu.DefaultLoginTimeout.String(),
	}, nil
}

// SearchNotes 按关键词搜索笔记
func (s *XiaohongshuService) SearchNotes(ctx context.Context, keyword string, limit int) ([]xiaohongshu.NoteSummary, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	if err := s.ensureLoggedIn(ctx, page); err != nil {
		return nil, err
	}

	result, err := xiaohongshu.NewSearchAction(page).Search(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}

	s.refreshCookies(page)
	return result, nil
}

// GetNoteContent 获取单篇笔记详情
func (s *XiaohongshuService) GetNoteContent(ctx context.Context, link string) (*xiaohongshu.NoteDetail, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	if err := s.ensureLoggedIn(ctx, page); err != nil {
		return nil, err
	}

	detail, err := xiaohongshu.NewDetailAction(page).GetDetail(ctx, link)
	if err != nil {
		return nil, err
	}

	s.refreshCookies(page)
	return detail, nil
}

// GetNoteComments 分页收集笔记评论
func (s *XiaohongshuService) GetNoteComments(ctx context.Context, link string, maxRounds int) ([]xiaohongshu.Comment, error) {
	page, release := s.manager.NewPageWithRelease()
	defer release()

	if err := s.ensureLoggedIn(ctx, page); err != nil {
		return nil, err
	}

	comments, err := xiaohongshu.NewCommentAction(page).GetComments(ctx, link, maxRounds)
	if err != nil {
		return nil, err
	}

	s.refreshCookies(page)
	return comments, nil
}

// PublishContent 发布图文笔记，远程图片先下载成本地文件
func (s *XiaohongshuService) PublishContent(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	imagePaths, err := downloader.ProcessImages(req.Images)
	if err != nil {
		return nil, err
	}

	page, release := s.manager.NewPageWithRelease()
	defer release()

	if err := s.ensureLoggedIn(ctx, page); err != nil {
		return nil, err
	}

	content := xiaohongshu.PublishImageContent{
		Title:      req.Title,
		Content:    req.Content,
		ImagePaths: imagePaths,
	}
	if err := xiaohongshu.NewPublishImageAction(page).Publish(ctx, content); err != nil {
		return nil, err
	}

	s.refreshCookies(page)
	return &PublishResult{
		Title:  req.Title,
		Images: len(imagePaths),
		Status: "发布完成",
	}, nil
}

// ensureLoggedIn 在执行采集操作前确认会话有效，未登录直接失败
func (s *XiaohongshuService) ensureLoggedIn(ctx context.Context, page *rod.Page) error {
	loggedIn, err := xiaohongshu.NewLogin(page).CheckLoginStatus(ctx)
	if err != nil {
		return err
	}
	if !loggedIn {
		logrus.Error("会话未登录，请先调用 login")
		return errors.Wrap(xiaohongshu.ErrNotLoggedIn, "please login first")
	}
	return nil
}

// refreshCookies 操作成功后机会性续期持久化的会话
func (s *XiaohongshuService) refreshCookies(page *rod.Page) {
	if err := browser.SavePageCookies(page, s.cookiesPath()); err != nil {
		logrus.WithError(err).Warn("刷新 cookies 失败")
	}
}
