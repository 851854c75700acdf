package model

type BulletCategory string

const (
	CategoryKeyPoint   BulletCategory = "key_point"
	CategoryDecision   BulletCategory = "decision"
	CategoryActionItem BulletCategory = "action_item"
	CategoryQuestion   BulletCategory = "question"
)

func (c BulletCategory) Valid() bool {
	switch c {
	case CategoryKeyPoint, CategoryDecision, CategoryActionItem, CategoryQuestion:
		return true
	}
	return false
}

// CategoryFor maps a summary-bound intent to its bullet category. Unmapped
// types land in key_point.
func CategoryFor(t IntentType) BulletCategory {
	switch t {
	case IntentDecision:
		return CategoryDecision
	case IntentActionItem:
		return CategoryActionItem
	case IntentQuestion:
		return CategoryQuestion
	default:
		return CategoryKeyPoint
	}
}

type SummaryBullet struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Category  BulletCategory `json:"category"`
	Owner     string         `json:"owner,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

type SummaryResponse struct {
	Bullets []SummaryBullet `json:"bullets"`
}
