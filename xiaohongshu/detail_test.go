package xiaohongshu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNoteDetail(t *testing.T) {
	raw := &rawNoteDetail{
		Title:        "杭州咖啡​探店",
		Content:      "  第一段  \n\n  第二段  ",
		Tags:         []string{"咖啡", "探店", "咖啡", " ", "杭州"},
		Author:       "咖啡日记",
		AuthorID:     "5ff0e6410000000001008400",
		LikesText:    "1.2万",
		CollectsText: "3,456",
		CommentsText: "评论",
		URL:          "https://www.xiaohongshu.com/explore/68e66fef0000000004023fdb?xsec_token=ABc9=",
	}

	detail := buildNoteDetail(raw, "")
	require.NotNil(t, detail)

	assert.Equal(t, "68e66fef0000000004023fdb", detail.ID)
	assert.Equal(t, "杭州咖啡探店", detail.Title)
	assert.Equal(t, "第一段\n\n第二段", detail.Content)

	// 标签去重并保持出现顺序，空标签丢弃
	assert.Equal(t, []string{"咖啡", "探店", "杭州"}, detail.Tags)

	assert.Equal(t, "咖啡日记", detail.Author.Nickname)
	assert.Equal(t, "5ff0e6410000000001008400", detail.Author.UserID)

	assert.Equal(t, 12000, detail.Engagement.Likes)
	assert.Equal(t, 3456, detail.Engagement.Favorites)
	// "评论" 占位文本按 0 处理
	assert.Equal(t, 0, detail.Engagement.Comments)

	assert.Equal(t, raw.URL, detail.Link)
}

func TestBuildNoteDetailFallbackLink(t *testing.T) {
	// 页面没回报 URL 时退回请求时的链接
	raw := &rawNoteDetail{Title: "标题"}
	requested := "https://www.xiaohongshu.com/explore/68e495f20000000004014d47"

	detail := buildNoteDetail(raw, requested)
	assert.Equal(t, requested, detail.Link)
	assert.Equal(t, "68e495f20000000004014d47", detail.ID)
}

func TestBuildNoteDetailEmptyFields(t *testing.T) {
	detail := buildNoteDetail(&rawNoteDetail{}, "")

	assert.Empty(t, detail.ID)
	assert.Empty(t, detail.Title)
	assert.Empty(t, detail.Tags)
	assert.Zero(t, detail.Engagement.Likes)
}
