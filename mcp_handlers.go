package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MCP 工具处理函数

// MCPContent 单条返回内容，text 或 image
type MCPContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// MCPToolResult 工具调用结果
type MCPToolResult struct {
	Content []MCPContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

func textResult(text string) *MCPToolResult {
	return &MCPToolResult{Content: []MCPContent{{Type: "text", Text: text}}}
}

func errorResult(text string) *MCPToolResult {
	return &MCPToolResult{
		Content: []MCPContent{{Type: "text", Text: text}},
		IsError: true,
	}
}

// jsonResult 把结构化结果序列化成 JSON 文本返回
func jsonResult(v interface{}) *MCPToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("结果序列化失败: %v", err))
	}
	return textResult(string(data))
}

// parseImageDataURL 解析 data:<mime>;base64,<payload> 形式的图片地址。
// 平台可能返回 png 以外的格式，mime 以地址里声明的为准。
func parseImageDataURL(src string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(src, "data:")
	if !found {
		return "", "", false
	}

	meta, payload, found := strings.Cut(rest, ",")
	if !found || payload == "" {
		return "", "", false
	}

	if !strings.HasSuffix(meta, ";base64") {
		return "", "", false
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return mimeType, payload, true
}

// handleCheckLoginStatus 处理检查登录状态
func (s *AppServer) handleCheckLoginStatus(ctx context.Context) *MCPToolResult {
	logrus.Info("MCP: 检查登录状态")

	status, err := s.xiaohongshuService.CheckLoginStatus(ctx)
	if err != nil {
		return errorResult("检查登录状态失败: " + err.Error())
	}

	if status.IsLoggedIn {
		return textResult("当前已登录")
	}
	return textResult("当前未登录，请先调用 login 或 get_login_qrcode")
}

// handleLogin 处理扫码登录
func (s *AppServer) handleLogin(ctx context.Context) *MCPToolResult {
	logrus.Info("MCP: 执行扫码登录")

	result, err := s.xiaohongshuService.Login(ctx)
	if err != nil {
		return errorResult("登录失败: " + err.Error())
	}

	if result.Status == "timeout" {
		return errorResult("登录超时: 二维码未在限定时间内被扫码，请重新调用 login")
	}
	return textResult("登录成功，cookies 已保存")
}

// handleGetLoginQrcode 处理获取登录二维码请求。
// 返回二维码图片的 Base64 编码和超时时间，供前端展示扫码登录。
func (s *AppServer) handleGetLoginQrcode(ctx context.Context) *MCPToolResult {
	logrus.Info("MCP: 获取登录扫码图片")

	result, err := s.xiaohongshuService.GetLoginQrcode(ctx)
	if err != nil {
		return errorResult("获取登录扫码图片失败: " + err.Error())
	}

	if result.IsLoggedIn {
		return textResult("你当前已处于登录状态")
	}

	now := time.Now()
	deadline := func() string {
		d, err := time.ParseDuration(result.Timeout)
		if err != nil {
			return now.Format("2006-01-02 15:04:05")
		}
		return now.Add(d).Format("2006-01-02 15:04:05")
	}()

	mimeType, payload, ok := parseImageDataURL(result.Img)
	if !ok {
		return errorResult("获取登录扫码图片失败: 二维码图片格式无法解析")
	}

	// 未登录：文本 + 图片
	contents := []MCPContent{
		{Type: "text", Text: "请用小红书 App 在 " + deadline + " 前扫码登录"},
		{
			Type:     "image",
			MimeType: mimeType,
			Data:     payload,
		},
	}
	return &MCPToolResult{Content: contents}
}

// handleSearchNotes 处理搜索笔记
func (s *AppServer) handleSearchNotes(ctx context.Context, keyword string, limit int) *MCPToolResult {
	if keyword == "" {
		return errorResult("搜索失败: 缺少关键词参数")
	}

	logrus.Infof("MCP: 搜索笔记 - 关键词: %s, 上限: %d", keyword, limit)

	notes, err := s.xiaohongshuService.SearchNotes(ctx, keyword, limit)
	if err != nil {
		return errorResult("搜索失败: " + err.Error())
	}

	return jsonResult(notes)
}

// handleGetNoteContent 处理获取笔记详情
func (s *AppServer) handleGetNoteContent(ctx context.Context, link string) *MCPToolResult {
	if link == "" {
		return errorResult("获取笔记详情失败: 缺少链接参数")
	}

	logrus.Infof("MCP: 获取笔记详情 - %s", link)

	detail, err := s.xiaohongshuService.GetNoteContent(ctx, link)
	if err != nil {
		return errorResult("获取笔记详情失败: " + err.Error())
	}

	return jsonResult(detail)
}

// handleGetNoteComments 处理获取笔记评论
func (s *AppServer) handleGetNoteComments(ctx context.Context, link string, maxRounds int) *MCPToolResult {
	if link == "" {
		return errorResult("获取评论失败: 缺少链接参数")
	}

	logrus.Infof("MCP: 获取笔记评论 - %s, 最大轮次: %d", link, maxRounds)

	comments, err := s.xiaohongshuService.GetNoteComments(ctx, link, maxRounds)
	if err != nil {
		return errorResult("获取评论失败: " + err.Error())
	}

	if len(comments) == 0 {
		return textResult("暂无评论")
	}
	return jsonResult(comments)
}

// handlePublishContent 处理发布图文笔记
func (s *AppServer) handlePublishContent(ctx context.Context, req *PublishRequest) *MCPToolResult {
	logrus.Infof("MCP: 发布内容 - 标题: %s, 图片数量: %d", req.Title, len(req.Images))

	result, err := s.xiaohongshuService.PublishContent(ctx, req)
	if err != nil {
		return errorResult("发布失败: " + err.Error())
	}

	return textResult(fmt.Sprintf("内容发布成功: %+v", result))
}
