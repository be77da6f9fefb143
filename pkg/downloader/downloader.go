package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// 发布时允许用户直接传图片 URL，这里统一下载成本地文件再交给上传控件。

var httpClient = &http.Client{Timeout: 60 * time.Second}

// ProcessImages 把图片来源列表统一处理成本地文件路径：
// http(s) 链接下载到临时目录，本地路径校验存在性。
func ProcessImages(sources []string) ([]string, error) {
	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			path, err := DownloadImage(src)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
			continue
		}

		if _, err := os.Stat(src); err != nil {
			return nil, errors.Wrapf(err, "image file not found: %s", src)
		}
		paths = append(paths, src)
	}
	return paths, nil
}

// DownloadImage 下载远程图片到临时目录，按文件内容嗅探扩展名
func DownloadImage(url string) (string, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return "", errors.Wrapf(err, "download image: %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("download image: %s, status: %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read image body")
	}

	path, err := saveImage(data)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"url":  url,
		"path": path,
	}).Debug("图片下载完成")
	return path, nil
}

// saveImage 把图片字节写成临时文件，扩展名由内容嗅探得出
func saveImage(data []byte) (string, error) {
	if !filetype.IsImage(data) {
		return "", errors.New("downloaded content is not an image")
	}

	ext := "bin"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		ext = kind.Extension
	}

	f, err := os.CreateTemp("", fmt.Sprintf("rednote_image_*.%s", ext))
	if err != nil {
		return "", errors.Wrap(err, "create temp image file")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "write temp image file")
	}

	return filepath.Clean(f.Name()), nil
}
