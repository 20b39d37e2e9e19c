package structs

type ActivityLogJsonModel struct {
	Type      string         `json:"type"`
	UserID    int64          `json:"user_id,omitempty"`
	Username  string         `json:"username,omitempty"`
	Result    bool           `json:"result"`
	Statistic StatisticModel `json:"statistic"`
	Message   string         `json:"message"`
	Messages  []ErrorModel   `json:"messages"`
}

type StatisticModel struct {
	TotalUser int `json:"total_user"`
	FailUser  int `json:"fail_user"`
	OKUser    int `json:"ok_user"`
}

type ErrorModel struct {
	UserID       int64  `json:"user_id"`
	ErrorMessage string `json:"error_message"`
}
