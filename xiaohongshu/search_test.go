package xiaohongshu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeedsJSON = `[
	{
		"id": "68e66fef0000000004023fdb",
		"xsecToken": "ABc9=",
		"noteCard": {
			"type": "normal",
			"displayTitle": "杭州咖啡探店​合集",
			"user": {"nickname": "咖啡日记"},
			"interactInfo": {"likedCount": "1.2万", "commentCount": "532"},
			"cover": {"urlDefault": "https://sns-img.example.com/cover1.jpg"}
		}
	},
	{
		"id": "",
		"noteCard": {"displayTitle": "热搜词条目"}
	},
	{
		"id": "68ebe520000000000702039c",
		"xsecToken": "ABrYg=",
		"noteCard": {
			"type": "video",
			"displayTitle": "周末去哪儿",
			"user": {"nickname": "旅行家"},
			"interactInfo": {},
			"cover": {}
		}
	},
	{
		"id": "68ea423d0000000004013ff3",
		"noteCard": {
			"displayTitle": "第三篇",
			"user": {"nickname": "作者三"},
			"interactInfo": {"likedCount": "88"}
		}
	}
]`

func TestParseSearchFeeds(t *testing.T) {
	summaries, err := parseSearchFeeds(sampleFeedsJSON, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 3, "没有 id 的热搜词条目应该被跳过")

	// 保持平台展示顺序
	assert.Equal(t, "68e66fef0000000004023fdb", summaries[0].ID)
	assert.Equal(t, "68ebe520000000000702039c", summaries[1].ID)
	assert.Equal(t, "68ea423d0000000004013ff3", summaries[2].ID)

	// 标题里的零宽字符要被清理掉
	assert.Equal(t, "杭州咖啡探店合集", summaries[0].Title)
	assert.Equal(t, "咖啡日记", summaries[0].Author)
	assert.Equal(t, "https://sns-img.example.com/cover1.jpg", summaries[0].Cover)
	assert.Equal(t, 12000, summaries[0].LikeCount)
	assert.Equal(t, 532, summaries[0].CommentCount)

	// 详情链接带 xsec_token
	assert.Contains(t, summaries[0].Link, "/explore/68e66fef0000000004023fdb")
	assert.Contains(t, summaries[0].Link, "xsec_token=ABc9=")

	// 缺失的互动数按 0 处理
	assert.Equal(t, 0, summaries[1].LikeCount)
	assert.Equal(t, 0, summaries[1].CommentCount)
	assert.Equal(t, 88, summaries[2].LikeCount)
}

func TestParseSearchFeedsLimit(t *testing.T) {
	summaries, err := parseSearchFeeds(sampleFeedsJSON, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "68e66fef0000000004023fdb", summaries[0].ID)
	assert.Equal(t, "68ebe520000000000702039c", summaries[1].ID)
}

func TestParseSearchFeedsFewerThanLimit(t *testing.T) {
	// 平台只返回 3 条时，limit 再大也只返回 3 条
	summaries, err := parseSearchFeeds(sampleFeedsJSON, 50)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
}

func TestParseSearchFeedsInvalidJSON(t *testing.T) {
	// 整体解析失败必须以 ErrParse 报错，不能伪装成空结果的成功
	summaries, err := parseSearchFeeds("not-json", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Nil(t, summaries)
}
