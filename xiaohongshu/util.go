package xiaohongshu

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const baseURL = "https://www.xiaohongshu.com"

// parseNoteURL 从笔记 URL 中解析 feedID 和 xsecToken
// URL 格式: /explore/68e66fef0000000004023fdb?xsec_token=ABc9...&xsec_source=pc_feed
func parseNoteURL(urlStr string) (feedID, xsecToken string) {
	// 解析路径部分提取 feedID
	// /explore/68e66fef0000000004023fdb?... -> 68e66fef0000000004023fdb
	for _, prefix := range []string{"/explore/", "/discovery/item/"} {
		if strings.Contains(urlStr, prefix) {
			parts := strings.Split(urlStr, prefix)
			if len(parts) > 1 {
				// 提取问号前的部分
				pathPart := parts[1]
				if idx := strings.Index(pathPart, "?"); idx > 0 {
					feedID = pathPart[:idx]
				} else {
					feedID = pathPart
				}
			}
			break
		}
	}

	// 解析查询参数提取 xsec_token
	if strings.Contains(urlStr, "xsec_token=") {
		parts := strings.Split(urlStr, "xsec_token=")
		if len(parts) > 1 {
			tokenPart := parts[1]
			// 提取 & 前的部分（如果有的话）
			if idx := strings.Index(tokenPart, "&"); idx > 0 {
				xsecToken = tokenPart[:idx]
			} else {
				xsecToken = tokenPart
			}
		}
	}

	return feedID, xsecToken
}

// makeNoteURL 由 feedID 和 xsecToken 拼出笔记详情页链接
func makeNoteURL(feedID, xsecToken string) string {
	if xsecToken == "" {
		return fmt.Sprintf("%s/explore/%s", baseURL, feedID)
	}
	return fmt.Sprintf("%s/explore/%s?xsec_token=%s&xsec_source=pc_search", baseURL, feedID, xsecToken)
}

// chineseUnitToNumber 把平台展示的计数文本转成数字。
// 支持 "1.2万" 这类带单位的写法；"赞"、"收藏" 等纯文字占位一律按 0 处理。
func chineseUnitToNumber(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if strings.Contains(s, "万") {
		numPart := strings.TrimSpace(strings.Replace(s, "万", "", 1))
		f, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0
		}
		return int(f * 10000)
	}

	// 去掉千分位逗号等非数字字符后再解析
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// normalizeText 清理平台注入的零宽字符等排版噪音，保留段落换行，不改动语义内容
func normalizeText(s string) string {
	replacer := strings.NewReplacer(
		"\u200B", "", // zero width space
		"\u200C", "", // zero width non-joiner
		"\u200D", "", // zero width joiner
		"\u2060", "", // word joiner
		"\uFEFF", "", // BOM
	)
	s = replacer.Replace(s)

	// 逐行清理首尾空白，保留段落边界
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// randomDuration 生成随机时长（毫秒）
func randomDuration(min, max int) time.Duration {
	return time.Duration(rand.Intn(max-min+1)+min) * time.Millisecond
}
