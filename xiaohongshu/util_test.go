package xiaohongshu

import (
	"testing"
)

func TestParseNoteURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedFeedID string
		expectedToken  string
	}{
		{
			name:           "完整 URL",
			url:            "/explore/68e66fef0000000004023fdb?xsec_token=ABc9MCVTGMXqvxLT8H-fHb_6DodO8iEoHByoltzPex20I=&xsec_source=",
			expectedFeedID: "68e66fef0000000004023fdb",
			expectedToken:  "ABc9MCVTGMXqvxLT8H-fHb_6DodO8iEoHByoltzPex20I=",
		},
		{
			name:           "带 pc_feed 的 URL",
			url:            "/explore/68ebe520000000000702039c?xsec_token=ABrYg9Jn28WjYaI1Kj4cUtUTQnwSJB92pzKDI8V_47CIo=&xsec_source=pc_feed",
			expectedFeedID: "68ebe520000000000702039c",
			expectedToken:  "ABrYg9Jn28WjYaI1Kj4cUtUTQnwSJB92pzKDI8V_47CIo=",
		},
		{
			name:           "discovery 形式的 URL",
			url:            "https://www.xiaohongshu.com/discovery/item/68ea423d0000000004013ff3?xsec_token=ABVGNDRZ66j_hybhC_ySCokwCW2Vu6j_fk4Wsic8FFdQc=",
			expectedFeedID: "68ea423d0000000004013ff3",
			expectedToken:  "ABVGNDRZ66j_hybhC_ySCokwCW2Vu6j_fk4Wsic8FFdQc=",
		},
		{
			name:           "没有查询参数的 URL",
			url:            "/explore/68e495f20000000004014d47",
			expectedFeedID: "68e495f20000000004014d47",
			expectedToken:  "",
		},
		{
			name:           "非笔记 URL",
			url:            "https://www.xiaohongshu.com/search_result?keyword=abc",
			expectedFeedID: "",
			expectedToken:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedID, token := parseNoteURL(tt.url)

			if feedID != tt.expectedFeedID {
				t.Errorf("feedID 解析错误，期望: %s, 实际: %s", tt.expectedFeedID, feedID)
			}

			if token != tt.expectedToken {
				t.Errorf("xsecToken 解析错误，期望: %s, 实际: %s", tt.expectedToken, token)
			}
		})
	}
}

func TestMakeNoteURL(t *testing.T) {
	withToken := makeNoteURL("68e66fef0000000004023fdb", "ABc9=")
	if withToken != "https://www.xiaohongshu.com/explore/68e66fef0000000004023fdb?xsec_token=ABc9=&xsec_source=pc_search" {
		t.Errorf("带 token 的链接拼接错误: %s", withToken)
	}

	withoutToken := makeNoteURL("68e66fef0000000004023fdb", "")
	if withoutToken != "https://www.xiaohongshu.com/explore/68e66fef0000000004023fdb" {
		t.Errorf("不带 token 的链接拼接错误: %s", withoutToken)
	}
}

func TestChineseUnitToNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "纯数字", text: "532", expected: 532},
		{name: "带万单位", text: "1.2万", expected: 12000},
		{name: "整数万", text: "3万", expected: 30000},
		{name: "千分位逗号", text: "1,024", expected: 1024},
		{name: "纯文字占位", text: "赞", expected: 0},
		{name: "收藏占位", text: "收藏", expected: 0},
		{name: "空字符串", text: "", expected: 0},
		{name: "首尾空白", text: " 88 ", expected: 88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chineseUnitToNumber(tt.text)
			if got != tt.expected {
				t.Errorf("计数转换错误，输入: %q, 期望: %d, 实际: %d", tt.text, tt.expected, got)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "去掉零宽字符",
			text:     "美食\u200B探店\u200C指南",
			expected: "美食探店指南",
		},
		{
			name:     "保留段落换行",
			text:     "  第一段  \n\n  第二段  ",
			expected: "第一段\n\n第二段",
		},
		{
			name:     "去掉 BOM",
			text:     "\uFEFF标题",
			expected: "标题",
		},
		{
			name:     "普通文本原样返回",
			text:     "普通文本",
			expected: "普通文本",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeText(tt.text)
			if got != tt.expected {
				t.Errorf("文本清理错误，期望: %q, 实际: %q", tt.expected, got)
			}
		})
	}
}
