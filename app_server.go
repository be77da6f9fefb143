package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rednotelab/rednote-mcp/browser"
	"github.com/rednotelab/rednote-mcp/xiaohongshu"
)

// AppServer 是对外的服务入口：HTTP 模式挂载 MCP Streamable 端点和少量状态接口，
// STDIO 模式直接运行 MCP 服务器。
type AppServer struct {
	xiaohongshuService *XiaohongshuService
	mcpServer          *mcp.Server
}

func NewAppServer(service *XiaohongshuService) *AppServer {
	s := &AppServer{xiaohongshuService: service}
	s.mcpServer = s.newMCPServer()
	return s
}

// Start 以 HTTP 模式启动
func (s *AppServer) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 登录状态探测：浏览器被占用时不排队，直接报忙
	router.GET("/api/v1/login/status", s.loginStatusHandler)

	// MCP Streamable HTTP 端点
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	router.Any("/mcp", gin.WrapH(mcpHandler))

	logrus.Infof("HTTP 服务启动，监听 %s", addr)
	return router.Run(addr)
}

// StartSTDIO 以 STDIO 模式运行 MCP 服务器（用于 MCP 客户端直连）
func (s *AppServer) StartSTDIO() error {
	return s.mcpServer.Run(context.Background(), &mcp.StdioTransport{})
}

// loginStatusHandler 用非阻塞方式取浏览器做登录态探测。
// 浏览器正被其他操作占用时返回 409，不加入等待队列。
func (s *AppServer) loginStatusHandler(c *gin.Context) {
	page, release, err := browser.GetGlobalManager().TryNewPageWithRelease()
	if err != nil {
		if errors.Is(err, browser.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{
				"error": errors.Wrap(xiaohongshu.ErrSessionBusy, "browser context in use").Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer release()

	loggedIn, err := xiaohongshu.NewLogin(page).CheckLoginStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_logged_in": loggedIn})
}
