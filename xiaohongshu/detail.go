package xiaohongshu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DetailAction 提取单篇笔记的完整内容：
// 标题、正文（保留段落边界）、标签、作者与互动数据。
type DetailAction struct {
	page *rod.Page
}

func NewDetailAction(page *rod.Page) *DetailAction {
	return &DetailAction{page: page}
}

// rawNoteDetail 页面 JS 提取到的原始字段，计数仍是平台展示文本
type rawNoteDetail struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags"`
	Author       string   `json:"author"`
	AuthorID     string   `json:"authorId"`
	LikesText    string   `json:"likes"`
	CollectsText string   `json:"collects"`
	CommentsText string   `json:"comments"`
	URL          string   `json:"url"`
}

// GetDetail 打开笔记链接并提取详情。
// 笔记已删除或仅作者可见时返回 ErrNotFound。
func (a *DetailAction) GetDetail(ctx context.Context, link string) (*NoteDetail, error) {
	page := a.page.Context(ctx).Timeout(60 * time.Second)

	logrus.WithField("link", link).Info("导航到笔记详情页")
	if err := page.Navigate(link); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "navigate to note page: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "wait note page load: %v", err)
	}

	// 有界等待正文容器；等不到时先判断是不是内容已失效，再归类为导航失败
	if _, err := page.Timeout(30 * time.Second).Element(".note-container"); err != nil {
		if a.isNoteGone(page) {
			logrus.WithField("link", link).Warn("笔记已删除或不可见")
			return nil, errors.Wrapf(ErrNotFound, "note removed or private: %s", link)
		}
		return nil, errors.Wrapf(ErrNavigation, "note container not found: %v", err)
	}

	raw, err := a.extract(page)
	if err != nil {
		return nil, err
	}

	detail := buildNoteDetail(raw, link)
	logrus.WithFields(logrus.Fields{
		"note_id": detail.ID,
		"title":   detail.Title,
	}).Info("笔记详情提取完成")

	return detail, nil
}

// isNoteGone 检查当前页面是否是「内容不存在/不可见」的提示页
func (a *DetailAction) isNoteGone(page *rod.Page) bool {
	obj, err := page.Eval(`() => {
		if (location.pathname.includes('/404')) return true;
		const text = document.body ? document.body.innerText : '';
		return text.includes('你访问的页面不见了') ||
		       text.includes('当前笔记暂时无法浏览') ||
		       text.includes('该内容无法展示');
	}`)
	if err != nil {
		return false
	}
	return obj.Value.Bool()
}

// extract 在页面里执行提取脚本，取回原始字段。
// 正文取 innerText 以保留段落换行；不同布局下标题选择器有两种变体。
func (a *DetailAction) extract(page *rod.Page) (*rawNoteDetail, error) {
	obj, err := page.Eval(`() => {
		const article = document.querySelector('.note-container');
		if (!article) return '';

		const title =
			article.querySelector('#detail-title')?.innerText?.trim() ||
			article.querySelector('.title')?.innerText?.trim() ||
			'';

		const contentBlock = article.querySelector('.note-scroller') || article;
		const textEl = contentBlock.querySelector('.note-content .note-text');
		const content = textEl ? textEl.innerText : '';

		const tags = Array.from(contentBlock.querySelectorAll('.note-content .note-text a'))
			.map(tag => (tag.innerText || '').trim().replace('#', ''))
			.filter(t => t.length > 0);

		const authorEl = article.querySelector('.author-container .info');
		const author = authorEl?.querySelector('.username')?.innerText?.trim() || '';
		const authorLink = article.querySelector('.author-container a.name, .author-container .info a');
		let authorId = '';
		if (authorLink && authorLink.href) {
			const m = authorLink.href.match(/profile\/([0-9a-f]+)/);
			if (m) authorId = m[1];
		}

		const interact = document.querySelector('.interact-container');
		const likes = interact?.querySelector('.like-wrapper .count')?.innerText?.trim() || '';
		const collects = interact?.querySelector('.collect-wrapper .count')?.innerText?.trim() || '';
		const comments = interact?.querySelector('.chat-wrapper .count')?.innerText?.trim() || '';

		return JSON.stringify({
			title, content, tags, author, authorId,
			likes, collects, comments,
			url: window.location.href
		});
	}`)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "eval note detail: %v", err)
	}

	rawJSON := obj.Value.Str()
	if rawJSON == "" {
		return nil, errors.Wrap(ErrParse, "note container disappeared during extraction")
	}

	var raw rawNoteDetail
	if err := json.Unmarshal([]byte(rawJSON), &raw); err != nil {
		return nil, errors.Wrapf(ErrParse, "unmarshal note detail: %v", err)
	}
	return &raw, nil
}

// buildNoteDetail 把原始字段转成带默认值的详情记录：
// 文本做零宽字符清理，标签去重并保持出现顺序，计数文本转数字。
func buildNoteDetail(raw *rawNoteDetail, requestedLink string) *NoteDetail {
	link := raw.URL
	if link == "" {
		link = requestedLink
	}
	noteID, _ := parseNoteURL(link)

	seen := make(map[string]struct{}, len(raw.Tags))
	tags := make([]string, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		tag = normalizeText(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return &NoteDetail{
		ID:      noteID,
		Title:   normalizeText(raw.Title),
		Content: normalizeText(raw.Content),
		Tags:    tags,
		Author: AuthorInfo{
			Nickname: raw.Author,
			UserID:   raw.AuthorID,
		},
		Engagement: EngagementMetrics{
			Likes:     chineseUnitToNumber(raw.LikesText),
			Favorites: chineseUnitToNumber(raw.CollectsText),
			Comments:  chineseUnitToNumber(raw.CommentsText),
		},
		Link: link,
	}
}
