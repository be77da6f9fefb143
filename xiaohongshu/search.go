package xiaohongshu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultSearchLimit 搜索结果数量的默认上限
const DefaultSearchLimit = 10

// SearchAction 关键词搜索：导航到搜索结果页，
// 从 window.__INITIAL_STATE__ 提取笔记列表，按平台展示顺序返回。
type SearchAction struct {
	page *rod.Page
}

func NewSearchAction(page *rod.Page) *SearchAction {
	return &SearchAction{page: page}
}

// Search 搜索笔记，最多返回 limit 条摘要。
// 单条笔记数据缺字段只跳过该条并记日志，不让整个搜索失败。
func (a *SearchAction) Search(ctx context.Context, keyword string, limit int) ([]NoteSummary, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	page := a.page.Context(ctx).Timeout(60 * time.Second)

	searchURL := fmt.Sprintf("%s/search_result?keyword=%s", baseURL, url.QueryEscape(keyword))
	logrus.WithField("keyword", keyword).Info("导航到搜索结果页")

	if err := page.Navigate(searchURL); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "navigate to search page: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "wait search page load: %v", err)
	}

	// 有界等待结果列表容器出现
	if _, err := page.Timeout(30 * time.Second).Element(".feeds-container"); err != nil {
		logrus.WithField("keyword", keyword).Errorf("等待搜索结果容器超时: %v", err)
		return nil, errors.Wrapf(ErrNavigation, "search feeds container not found: %v", err)
	}

	raw, err := a.feedsFromPage(page)
	if err != nil {
		return nil, err
	}

	summaries, err := parseSearchFeeds(raw, limit)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"keyword": keyword,
		"count":   len(summaries),
	}).Info("搜索完成")

	return summaries, nil
}

// feedsFromPage 从页面的 window.__INITIAL_STATE__ 获取搜索结果列表。
// 只提取需要的字段，避免序列化整个状态树时的循环引用问题。
func (a *SearchAction) feedsFromPage(page *rod.Page) (string, error) {
	obj, err := page.Eval(`() => {
		if (window.__INITIAL_STATE__ &&
		    window.__INITIAL_STATE__.search &&
		    window.__INITIAL_STATE__.search.feeds &&
		    window.__INITIAL_STATE__.search.feeds._value) {
			const feeds = window.__INITIAL_STATE__.search.feeds._value;
			return JSON.stringify(feeds.map(feed => ({
				id: feed.id,
				xsecToken: feed.xsecToken,
				noteCard: feed.noteCard
			})));
		}
		return "";
	}`)
	if err != nil {
		return "", errors.Wrapf(ErrParse, "eval search feeds: %v", err)
	}

	raw := obj.Value.Str()
	if raw == "" {
		return "", errors.Wrap(ErrParse, "__INITIAL_STATE__.search not found")
	}
	return raw, nil
}

// parseSearchFeeds 把搜索页的原始笔记数据转成摘要列表。
// 保持平台展示顺序，截断到 limit；缺失的互动数按 0 处理。
// 整体解析失败向上传播，不能让调用方误以为搜索成功且无结果。
func parseSearchFeeds(raw string, limit int) ([]NoteSummary, error) {
	var feeds []Feed
	if err := json.Unmarshal([]byte(raw), &feeds); err != nil {
		logrus.Errorf("解析搜索结果失败: %v", err)
		return nil, errors.Wrapf(ErrParse, "unmarshal search feeds: %v", err)
	}

	summaries := make([]NoteSummary, 0, len(feeds))
	for i, feed := range feeds {
		if len(summaries) >= limit {
			break
		}

		// 搜索页会混入热搜词等非笔记条目，没有 id 的直接跳过
		if feed.ID == "" {
			logrus.Debugf("跳过第 %d 条非笔记条目", i)
			continue
		}

		summaries = append(summaries, NoteSummary{
			ID:           feed.ID,
			Title:        normalizeText(feed.NoteCard.DisplayTitle),
			Author:       feed.NoteCard.User.Nickname,
			Cover:        feed.NoteCard.Cover.URLDefault,
			Link:         makeNoteURL(feed.ID, feed.XsecToken),
			LikeCount:    chineseUnitToNumber(feed.NoteCard.InteractInfo.LikedCount),
			CommentCount: chineseUnitToNumber(feed.NoteCard.InteractInfo.CommentCount),
		})
	}

	return summaries, nil
}
