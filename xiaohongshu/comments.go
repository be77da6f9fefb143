package xiaohongshu

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxCommentRounds 评论懒加载滚动的默认轮次上限
	DefaultMaxCommentRounds = 20

	// commentStableRounds 连续多少轮容器高度不变就认为评论已加载完
	commentStableRounds = 2
)

// commentPage 抽象出评论分页需要的最小页面能力：
// 取当前可见评论、量容器高度、滚到底部、等懒加载内容就位。
// 真实实现由 rod 页面承担，终止逻辑可以脱离浏览器验证。
type commentPage interface {
	VisibleComments() ([]rawComment, error)
	ScrollHeight() (float64, error)
	ScrollToBottom() error
	Settle(ctx context.Context) error
}

// rawComment 页面 JS 提取到的一条原始评论。
// ParentIndex 指向同一轮结果里所属主评论的下标，-1 表示不是楼中楼回复。
type rawComment struct {
	Author      string `json:"author"`
	Content     string `json:"content"`
	LikesText   string `json:"likes"`
	Time        string `json:"time"`
	ParentIndex int    `json:"parentIndex"`
}

// paginationCursor 单次评论拉取的内部游标，不持久化
type paginationCursor struct {
	stableRounds int
	collected    map[uint64]struct{}
}

// CommentAction 评论分页提取：反复「提取-滚动-等待」触发懒加载，
// 用派生的稳定标识跨轮次去重，直到高度稳定或达到轮次上限。
type CommentAction struct {
	page *rod.Page
}

func NewCommentAction(page *rod.Page) *CommentAction {
	return &CommentAction{page: page}
}

// GetComments 打开笔记链接并收集评论。
// 没有评论区（或评论为空）返回空列表，不算错误。
// 超时按步骤各自设置：导航、每轮的提取和滚动互不共享预算，
// 整体时长只受 ctx 和轮次上限约束。
func (a *CommentAction) GetComments(ctx context.Context, link string, maxRounds int) ([]Comment, error) {
	page := a.page.Context(ctx)

	logrus.WithField("link", link).Info("导航到笔记页准备收集评论")
	navPage := page.Timeout(60 * time.Second)
	if err := navPage.Navigate(link); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "navigate to note page: %v", err)
	}
	if err := navPage.WaitLoad(); err != nil {
		return nil, errors.Wrapf(ErrNavigation, "wait note page load: %v", err)
	}

	// 评论容器等不到通常意味着零评论，按空结果处理
	if _, err := page.Timeout(10 * time.Second).Element(".comments-container"); err != nil {
		logrus.WithField("link", link).Warn("未找到评论容器，按无评论处理")
		return []Comment{}, nil
	}

	return collectComments(ctx, &rodCommentPage{page: page}, maxRounds)
}

// collectComments 执行分页主循环。
// 每轮：提取可见评论并去重追加 -> 量高度 -> 滚到底 -> 等待 -> 再量高度；
// 高度连续 commentStableRounds 轮不变即提前终止。
func collectComments(ctx context.Context, page commentPage, maxRounds int) ([]Comment, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxCommentRounds
	}

	cursor := paginationCursor{collected: make(map[uint64]struct{})}
	result := make([]Comment, 0)

	for round := 1; round <= maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raws, err := page.VisibleComments()
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "extract comments at round %d: %v", round, err)
		}

		added := appendNewComments(&result, cursor.collected, raws)
		logrus.WithFields(logrus.Fields{
			"round": round,
			"added": added,
			"total": len(result),
		}).Info("评论收集完成一轮")

		before, err := page.ScrollHeight()
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "measure comment container: %v", err)
		}

		if err := page.ScrollToBottom(); err != nil {
			return nil, errors.Wrapf(ErrNavigation, "scroll comment container: %v", err)
		}
		if err := page.Settle(ctx); err != nil {
			return nil, err
		}

		after, err := page.ScrollHeight()
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "re-measure comment container: %v", err)
		}

		if after == before {
			cursor.stableRounds++
			if cursor.stableRounds >= commentStableRounds {
				logrus.WithField("round", round).Info("容器高度已连续稳定，评论加载完毕")
				break
			}
		} else {
			cursor.stableRounds = 0
		}
	}

	logrus.WithField("total", len(result)).Info("评论收集结束")
	return result, nil
}

// appendNewComments 把本轮提取到的评论按首次出现顺序追加到结果里，
// 形损的节点（作者和内容都为空）跳过，不影响同轮其他评论。
func appendNewComments(result *[]Comment, collected map[uint64]struct{}, raws []rawComment) int {
	// 先算好本轮每条评论的标识，楼中楼回复用它指回主评论
	keys := make([]uint64, len(raws))
	for i, rc := range raws {
		keys[i] = commentIdentity(rc.Author, rc.Content, rc.Time)
	}

	added := 0
	for i, rc := range raws {
		if rc.Author == "" && rc.Content == "" {
			logrus.Debug("跳过无法解析的评论节点")
			continue
		}

		key := keys[i]
		if _, seen := collected[key]; seen {
			continue
		}
		collected[key] = struct{}{}

		comment := Comment{
			ID:        formatCommentID(key),
			Author:    rc.Author,
			Content:   normalizeText(rc.Content),
			Time:      rc.Time,
			LikeCount: chineseUnitToNumber(rc.LikesText),
		}
		if rc.ParentIndex >= 0 && rc.ParentIndex < len(raws) && rc.ParentIndex != i {
			// 主评论本身形损被跳过时不能留下指向不存在记录的 ParentID
			if parent := raws[rc.ParentIndex]; parent.Author != "" || parent.Content != "" {
				comment.ParentID = formatCommentID(keys[rc.ParentIndex])
			}
		}

		*result = append(*result, comment)
		added++
	}
	return added
}

// commentIdentity 派生评论的稳定标识。
// 平台不在 DOM 里暴露数字 id，用作者+内容+时间哈希代替。
func commentIdentity(author, content, timeText string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(author))
	h.Write([]byte{0})
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(timeText))
	return h.Sum64()
}

func formatCommentID(key uint64) string {
	return fmt.Sprintf("%016x", key)
}

// rodCommentPage 是 commentPage 的浏览器实现。
// 每次求值都套独立的短超时，单步卡住不会吃掉后续轮次的时间。
type rodCommentPage struct {
	page *rod.Page
}

// commentStepTimeout 单次提取/量高/滚动调用的超时
const commentStepTimeout = 10 * time.Second

// 评论区滚动容器在不同布局下有两种变体，找不到就退回文档根
const jsCommentContainer = `
	const container = document.querySelector('.note-scroller') ||
	                  document.querySelector('.note-content-container') ||
	                  document.documentElement;
`

func (r *rodCommentPage) VisibleComments() ([]rawComment, error) {
	obj, err := r.page.Timeout(commentStepTimeout).Eval(`() => {
		const read = (item) => ({
			author: item.querySelector('.author-wrapper .name')?.innerText?.trim() || '',
			content: item.querySelector('.content .note-text')?.innerText?.trim() || '',
			likes: item.querySelector('.like-wrapper .count')?.innerText?.trim() || '',
			time: (() => {
				const dateEl = item.querySelector('.info .date');
				if (!dateEl) return '';
				const spans = dateEl.querySelectorAll('span');
				const el = spans.length > 0 ? spans[0] : dateEl;
				return el.innerText?.trim() || '';
			})(),
		});

		const results = [];
		const parents = document.querySelectorAll('.comments-container .parent-comment');
		if (parents.length > 0) {
			// 主评论 + 楼中楼回复的布局
			parents.forEach((block) => {
				let parentIndex = -1;
				const primary = block.querySelector('.comment-item:not(.comment-item-sub)');
				if (primary) {
					parentIndex = results.length;
					results.push({ ...read(primary), parentIndex: -1 });
				}
				block.querySelectorAll('.comment-item-sub').forEach((sub) => {
					results.push({ ...read(sub), parentIndex });
				});
			});
		} else {
			// 扁平布局
			document.querySelectorAll('.comment-item').forEach((item) => {
				results.push({ ...read(item), parentIndex: -1 });
			});
		}
		return JSON.stringify(results);
	}`)
	if err != nil {
		return nil, err
	}

	var raws []rawComment
	if err := json.Unmarshal([]byte(obj.Value.Str()), &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

func (r *rodCommentPage) ScrollHeight() (float64, error) {
	obj, err := r.page.Timeout(commentStepTimeout).Eval(`() => {` + jsCommentContainer + `return container.scrollHeight;}`)
	if err != nil {
		return 0, err
	}
	return obj.Value.Num(), nil
}

func (r *rodCommentPage) ScrollToBottom() error {
	_, err := r.page.Timeout(commentStepTimeout).Eval(`() => {` + jsCommentContainer + `container.scrollTo(0, container.scrollHeight);}`)
	return err
}

// Settle 给懒加载请求留出落地时间，随机化间隔避免节奏过于机械
func (r *rodCommentPage) Settle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(randomDuration(1200, 2000)):
		return nil
	}
}
