package tag

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// UpsertAll creates missing tags and returns the full set for the texts.
	UpsertAll(ctx context.Context, texts []string) ([]Tag, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertAll(ctx context.Context, texts []string) ([]Tag, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	tags := make([]Tag, 0, len(texts))
	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, Tag{Text: t})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
