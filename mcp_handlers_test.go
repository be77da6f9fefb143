package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImageDataURL(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		expectedMime string
		expectedData string
		expectedOK   bool
	}{
		{
			name:         "png 二维码",
			src:          "data:image/png;base64,iVBORw0KGgo=",
			expectedMime: "image/png",
			expectedData: "iVBORw0KGgo=",
			expectedOK:   true,
		},
		{
			name:         "jpeg 二维码",
			src:          "data:image/jpeg;base64,/9j/4AAQ",
			expectedMime: "image/jpeg",
			expectedData: "/9j/4AAQ",
			expectedOK:   true,
		},
		{
			name:         "webp 二维码",
			src:          "data:image/webp;base64,UklGRg==",
			expectedMime: "image/webp",
			expectedData: "UklGRg==",
			expectedOK:   true,
		},
		{
			name:         "缺失 mime 时回退 png",
			src:          "data:;base64,iVBORw0KGgo=",
			expectedMime: "image/png",
			expectedData: "iVBORw0KGgo=",
			expectedOK:   true,
		},
		{
			name:       "不是 data URL",
			src:        "https://example.com/qrcode.png",
			expectedOK: false,
		},
		{
			name:       "非 base64 编码",
			src:        "data:image/svg+xml,<svg/>",
			expectedOK: false,
		},
		{
			name:       "空载荷",
			src:        "data:image/png;base64,",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, payload, ok := parseImageDataURL(tt.src)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expectedMime, mimeType)
				assert.Equal(t, tt.expectedData, payload)
			}
		})
	}
}
