package xiaohongshu

// Feed 搜索/推荐页 window.__INITIAL_STATE__ 里的一条笔记数据
type Feed struct {
	ID        string   `json:"id"`
	XsecToken string   `json:"xsecToken"`
	NoteCard  NoteCard `json:"noteCard"`
}

// NoteCard 笔记卡片数据，字段都可能缺失，解析时按需取默认值
type NoteCard struct {
	Type         string       `json:"type"`
	DisplayTitle string       `json:"displayTitle"`
	User         User         `json:"user"`
	InteractInfo InteractInfo `json:"interactInfo"`
	Cover        Cover        `json:"cover"`
}

type User struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// InteractInfo 互动数据，平台返回的是 "1.2万" 这类字符串
type InteractInfo struct {
	Liked        bool   `json:"liked"`
	LikedCount   string `json:"likedCount"`
	CommentCount string `json:"commentCount"`
}

type Cover struct {
	URLDefault string `json:"urlDefault"`
}

// NoteSummary 搜索结果里的一条笔记摘要，按平台展示顺序返回，返回后不再变更
type NoteSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Cover        string `json:"cover,omitempty"`
	Link         string `json:"link"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

// AuthorInfo 笔记作者信息
type AuthorInfo struct {
	Nickname string `json:"nickname"`
	UserID   string `json:"user_id,omitempty"`
}

// EngagementMetrics 笔记互动指标
type EngagementMetrics struct {
	Likes     int `json:"likes"`
	Favorites int `json:"favorites"`
	Comments  int `json:"comments"`
}

// NoteDetail 单篇笔记的完整内容
type NoteDetail struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Tags       []string          `json:"tags"`
	Author     AuthorInfo        `json:"author"`
	Engagement EngagementMetrics `json:"engagement"`
	Link       string            `json:"link"`
}

// Comment 一条评论。ID 是根据作者、内容和时间派生的稳定标识，
// 用于跨滚动轮次去重；ParentID 指向楼中楼回复所属的主评论（可能为空）。
type Comment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Time      string `json:"time"`
	LikeCount int    `json:"like_count"`
	ParentID  string `json:"parent_id,omitempty"`
}
