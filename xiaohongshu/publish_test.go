package xiaohongshu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTitleLength(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "空标题", title: "", wantErr: false},
		{name: "短英文标题", title: "hello world", wantErr: false},
		{name: "正好 20 个汉字", title: strings.Repeat("好", 20), wantErr: false},
		{name: "21 个汉字超限", title: strings.Repeat("好", 21), wantErr: true},
		{name: "正好 40 个英文字符", title: strings.Repeat("a", 40), wantErr: false},
		{name: "41 个英文字符超限", title: strings.Repeat("a", 41), wantErr: true},
		{name: "中英混排在限内", title: "杭州咖啡探店 coffee guide", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTitleLength(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
