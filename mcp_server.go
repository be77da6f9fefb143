package main

import (
	"context"
	"encoding/base64"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// MCP 服务器：把服务层操作注册为工具，支持 STDIO 和 Streamable HTTP 两种传输。

// SearchNotesArgs 搜索工具参数
type SearchNotesArgs struct {
	Keyword string `json:"keyword" jsonschema:"搜索关键词"`
	Limit   int    `json:"limit,omitempty" jsonschema:"返回结果数量上限，默认 10"`
}

// NoteLinkArgs 只需要笔记链接的工具参数
type NoteLinkArgs struct {
	URL string `json:"url" jsonschema:"笔记链接"`
}

// NoteCommentsArgs 评论工具参数
type NoteCommentsArgs struct {
	URL       string `json:"url" jsonschema:"笔记链接"`
	MaxRounds int    `json:"max_rounds,omitempty" jsonschema:"懒加载滚动轮次上限，默认 20"`
}

// PublishArgs 发布工具参数
type PublishArgs struct {
	Title   string   `json:"title" jsonschema:"笔记标题"`
	Content string   `json:"content" jsonschema:"笔记正文"`
	Images  []string `json:"images" jsonschema:"图片路径或 URL 列表"`
}

// EmptyArgs 无参数工具
type EmptyArgs struct{}

// toSDKResult 把内部工具结果转成 go-sdk 的 CallToolResult
func toSDKResult(r *MCPToolResult) *mcp.CallToolResult {
	contents := make([]mcp.Content, 0, len(r.Content))
	for _, c := range r.Content {
		switch c.Type {
		case "image":
			data, err := base64.StdEncoding.DecodeString(c.Data)
			if err != nil {
				logrus.Warnf("二维码图片 base64 解码失败: %v", err)
				contents = append(contents, &mcp.TextContent{Text: "图片数据损坏"})
				continue
			}
			contents = append(contents, &mcp.ImageContent{Data: data, MIMEType: c.MimeType})
		default:
			contents = append(contents, &mcp.TextContent{Text: c.Text})
		}
	}
	return &mcp.CallToolResult{Content: contents, IsError: r.IsError}
}

// newMCPServer 创建并注册所有工具
func (s *AppServer) newMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rednote-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_login_status",
		Description: "检查当前小红书会话的登录状态",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleCheckLoginStatus(ctx)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "登录小红书账号并保存 Cookie，需要用 App 扫码",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleLogin(ctx)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_login_qrcode",
		Description: "获取登录二维码图片，供扫码登录",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleGetLoginQrcode(ctx)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_notes",
		Description: "根据关键词搜索小红书笔记，返回标题、作者、互动数据等摘要",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchNotesArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleSearchNotes(ctx, args.Keyword, args.Limit)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_note_content",
		Description: "获取小红书笔记的完整内容，包含标题、正文、标签和互动数据",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoteLinkArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleGetNoteContent(ctx, args.URL)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_note_comments",
		Description: "获取小红书笔记的评论列表，自动滚动触发懒加载",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoteCommentsArgs) (*mcp.CallToolResult, any, error) {
		return toSDKResult(s.handleGetNoteComments(ctx, args.URL, args.MaxRounds)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_note",
		Description: "发布小红书图文笔记（上传图片并发布）",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PublishArgs) (*mcp.CallToolResult, any, error) {
		publishReq := &PublishRequest{
			Title:   args.Title,
			Content: args.Content,
			Images:  args.Images,
		}
		return toSDKResult(s.handlePublishContent(ctx, publishReq)), nil, nil
	})

	return server
}
