package db

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/padraicbc/thunderbolt/assistant"
	"github.com/padraicbc/thunderbolt/models"
)

// QueryLog stores assistant exchanges in assistant_queries.
type QueryLog struct {
	db bun.IDB
}

func NewQueryLog(db bun.IDB) *QueryLog {
	return &QueryLog{db: db}
}

// Record implements assistant.Recorder.
func (q *QueryLog) Record(ctx context.Context, ex assistant.Exchange) error {
	row := ToQueryRow(ex)
	_, err := q.db.NewInsert().Model(row).Exec(ctx)
	return err
}

// Recent returns the latest exchanges, newest first. An empty user returns everyone's.
func (q *QueryLog) Recent(ctx context.Context, user string, limit int) ([]models.AssistantQuery, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.AssistantQuery
	sel := q.db.NewSelect().Model(&rows).OrderExpr("aq.id DESC").Limit(limit)
	if user != "" {
		sel = sel.Where("aq.username = ?", user)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// ToQueryRow maps an exchange onto its table row.
func ToQueryRow(ex assistant.Exchange) *models.AssistantQuery {
	row := &models.AssistantQuery{
		ProfileID:  ex.ProfileID,
		Question:   ex.Question,
		Answer:     ex.Answer,
		Provider:   ex.Provider,
		Failed:     ex.Failed,
		DurationMS: ex.Duration.Milliseconds(),
	}
	if ex.User != "" {
		u := ex.User
		row.Username = &u
	}
	if ex.Error != "" {
		e := ex.Error
		row.Error = &e
	}
	return row
}
