package model

import "time"

// TaskCategory groups tasks and fixes their default token reward.
type TaskCategory string

const (
	CategoryPersonalCare TaskCategory = "personal_care"
	CategoryHousehold    TaskCategory = "household"
	CategoryHomework     TaskCategory = "homework"
)

// CategoryInfo describes how a category is presented and rewarded.
type CategoryInfo struct {
	DisplayName string `json:"display_name"`
	TokenReward int    `json:"token_reward"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var categoryTable = map[TaskCategory]CategoryInfo{
	CategoryPersonalCare: {DisplayName: "Personal Care", TokenReward: 5, Icon: "🪥", Color: "#4FC3F7"},
	CategoryHousehold:    {DisplayName: "Household", TokenReward: 10, Icon: "🧹", Color: "#81C784"},
	CategoryHomework:     {DisplayName: "Homework", TokenReward: 15, Icon: "📚", Color: "#FFB74D"},
}

// Valid reports whether c is one of the known categories.
func (c TaskCategory) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Info returns the display and reward data for the category.
// Unknown categories return a zero CategoryInfo.
func (c TaskCategory) Info() CategoryInfo {
	return categoryTable[c]
}

// DefaultReward returns the fixed token reward for the category.
func (c TaskCategory) DefaultReward() int {
	return categoryTable[c].TokenReward
}

// Categories lists all known categories in display order.
func Categories() []TaskCategory {
	return []TaskCategory{CategoryPersonalCare, CategoryHousehold, CategoryHomework}
}

type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Category    TaskCategory `json:"category"`
	TokenReward int          `json:"token_reward"`
	IsCompleted bool         `json:"is_completed"`
	AssignedTo  int64        `json:"assigned_to"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at"`
}
