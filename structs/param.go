package structs

type ProfileQueueParam struct {
	Type      string `json:"type" form:"type"`
	UserID    int64  `json:"user_id" form:"user_id"`
	TaskID    uint   `json:"task_id" form:"task_id"`
	Result    string `json:"result" form:"result"`
	IsDie     bool   `json:"is_die" form:"is_die"`
	QueueType string `json:"queue_type" form:"queue_type"`
}

type ReportQueueParam struct {
	Type      string `json:"type" form:"type"`
	UserID    int64  `json:"user_id" form:"user_id"`
	Days      int    `json:"days" form:"days"`
	TaskID    uint   `json:"task_id" form:"task_id"`
	Result    string `json:"result" form:"result"`
	IsDie     bool   `json:"is_die" form:"is_die"`
	QueueType string `json:"queue_type" form:"queue_type"`
}

type MismatchQueueResponse struct {
	TaskId uint   `json:"task_id"`
	Queue  string `json:"queue"`
}

// ConsumptionEvent is published after a consumption is committed.
type ConsumptionEvent struct {
	MessageID  string `json:"message_id"`
	UserID     int64  `json:"user_id" validate:"required"`
	FoodID     int64  `json:"food_id" validate:"required"`
	MealType   string `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	ConsumedAt int64  `json:"consumed_at"`
}

// FeedbackEvent is published after a recommendation leaves the pending state.
type FeedbackEvent struct {
	MessageID        string `json:"message_id"`
	UserID           int64  `json:"user_id" validate:"required"`
	FoodID           int64  `json:"food_id" validate:"required"`
	RecommendationID int64  `json:"recommendation_id"`
	Feedback         string `json:"feedback"`
}
