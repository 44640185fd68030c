package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AssistantQuery is one question put to the LLM assistant and what came back.
type AssistantQuery struct {
	bun.BaseModel `bun:"table:assistant_queries,alias:aq"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Username   *string   `bun:"username" json:"username,omitempty"`
	ProfileID  string    `bun:"profile_id,notnull" json:"profileId"`
	Question   string    `bun:"question,notnull,type:text" json:"question"`
	Answer     string    `bun:"answer,notnull,type:text" json:"answer"`
	Provider   string    `bun:"provider,notnull" json:"provider"`
	Failed     bool      `bun:"failed,notnull" json:"failed"`
	Error      *string   `bun:"error,type:text" json:"error,omitempty"`
	DurationMS int64     `bun:"duration_ms,notnull" json:"durationMs"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
