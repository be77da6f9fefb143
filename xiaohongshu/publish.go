package xiaohongshu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	publishURL = "https://creator.xiaohongshu.com/publish/publish?source=official&from=tab_switch&target=image"

	// 平台限制标题最长 20 个汉字，按显示宽度折算为 40
	maxTitleDisplayWidth = 40
)

// PublishImageContent 图文笔记的发布内容
type PublishImageContent struct {
	Title      string
	Content    string
	ImagePaths []string
}

// PublishAction 创作者后台的图文发布流程：
// 上传图片 -> 等预览就位 -> 填标题正文 -> 重试点击发布直到出现成功提示。
type PublishAction struct {
	page *rod.Page
}

func NewPublishImageAction(page *rod.Page) *PublishAction {
	return &PublishAction{page: page}
}

// CheckTitleLength 校验标题显示宽度是否超过平台限制
func CheckTitleLength(title string) error {
	if w := runewidth.StringWidth(title); w > maxTitleDisplayWidth {
		return errors.Errorf("标题过长：显示宽度 %d 超过上限 %d", w, maxTitleDisplayWidth)
	}
	return nil
}

// Publish 发布一篇图文笔记
func (a *PublishAction) Publish(ctx context.Context, content PublishImageContent) error {
	if len(content.ImagePaths) == 0 {
		return errors.New("至少需要一张图片")
	}
	if err := CheckTitleLength(content.Title); err != nil {
		return err
	}

	page := a.page.Context(ctx).Timeout(120 * time.Second)

	logrus.WithField("images", len(content.ImagePaths)).Info("导航到创作者发布页")
	if err := page.Navigate(publishURL); err != nil {
		return errors.Wrapf(ErrNavigation, "navigate to publish page: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return errors.Wrapf(ErrNavigation, "wait publish page load: %v", err)
	}

	if err := a.uploadImages(page, content.ImagePaths); err != nil {
		return err
	}

	if err := a.fillTitleAndContent(page, content.Title, content.Content); err != nil {
		return err
	}

	// 填完内容后稍作停顿再发布
	time.Sleep(2 * time.Second)

	return a.clickPublishUntilSuccess(page)
}

// uploadImages 把本地图片文件设置到上传控件并等预览出现
func (a *PublishAction) uploadImages(page *rod.Page, imagePaths []string) error {
	input, err := page.Timeout(30 * time.Second).Element("input.upload-input")
	if err != nil {
		return errors.Wrapf(ErrParse, "upload input not found (未登录?): %v", err)
	}

	if err := input.SetFiles(imagePaths); err != nil {
		return errors.Wrapf(ErrParse, "set upload files: %v", err)
	}

	// 等图片预览出现；多图时再等数量对齐。等不到也继续，上传可能只是慢
	if _, err := page.Timeout(60 * time.Second).Element(".img-upload-area .img-container"); err != nil {
		logrus.Warnf("等待图片预览超时: %v，继续发布流程", err)
		return nil
	}

	if len(imagePaths) > 1 {
		deadline := time.Now().Add(60 * time.Second)
		for time.Now().Before(deadline) {
			obj, err := page.Eval(`() => document.querySelectorAll('.img-upload-area .img-container').length`)
			if err == nil && int(obj.Value.Num()) >= len(imagePaths) {
				break
			}
			time.Sleep(time.Second)
		}
	}

	logrus.Infof("已上传 %d 张图片", len(imagePaths))
	return nil
}

// fillTitleAndContent 填写标题和正文
func (a *PublishAction) fillTitleAndContent(page *rod.Page, title, content string) error {
	if title != "" {
		titleElem, err := page.Timeout(60 * time.Second).Element(`input.d-text`)
		if err != nil {
			return errors.Wrapf(ErrParse, "title input not found: %v", err)
		}
		if err := titleElem.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return errors.Wrapf(ErrParse, "click title input: %v", err)
		}
		if err := titleElem.Input(title); err != nil {
			return errors.Wrapf(ErrParse, "input title: %v", err)
		}
		time.Sleep(randomDuration(500, 1000))
	}

	if content != "" {
		contentElem, err := page.Timeout(30 * time.Second).Element(".tiptap.ProseMirror")
		if err != nil {
			return errors.Wrapf(ErrParse, "content editor not found: %v", err)
		}
		if err := contentElem.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return errors.Wrapf(ErrParse, "click content editor: %v", err)
		}
		if err := contentElem.Input(content); err != nil {
			return errors.Wrapf(ErrParse, "input content: %v", err)
		}
		time.Sleep(randomDuration(500, 1000))
	}

	return nil
}

// clickPublishUntilSuccess 每 2 秒点一次发布按钮，直到出现「发布成功」或超时
func (a *PublishAction) clickPublishUntilSuccess(page *rod.Page) error {
	const maxAttempts = 30

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logrus.Infof("点击发布按钮（第 %d/%d 次）", attempt, maxAttempts)

		btn, err := page.Timeout(5 * time.Second).Element(".publishBtn")
		if err == nil {
			if clickErr := btn.Click(proto.InputMouseButtonLeft, 1); clickErr != nil {
				logrus.Warnf("点击发布按钮失败: %v", clickErr)
			}
		}

		// 短超时探测成功提示
		if success, err := page.Timeout(2 * time.Second).Element(".success-container"); err == nil {
			text, _ := success.Text()
			if strings.Contains(text, "发布成功") {
				logrus.Info("发布成功")
				return nil
			}
		}

		time.Sleep(2 * time.Second)
	}

	return errors.Wrap(ErrNavigation, fmt.Sprintf("发布未在 %d 次尝试内确认成功", maxAttempts))
}
