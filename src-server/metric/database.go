package metric

import (
	"context"
	"time"
	"vobject/src-server/model"
	"vobject/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Document)(nil)).
		Where("id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func documentCount(as *utils.AppState) (int, error) {
	return as.BunDB.NewSelect().
		Model((*model.Document)(nil)).
		Count(context.Background())
}
