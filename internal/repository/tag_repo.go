package repository

import (
	"context"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	List(ctx context.Context, userID int64, search string) ([]model.Tag, error)
	GetByID(ctx context.Context, id, userID int64) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) error
	Update(ctx context.Context, tag *model.Tag) error
	// Delete 同时清除该标签在三张关联表中的行
	Delete(ctx context.Context, id, userID int64) error
}

type tagRepo struct {
	store *database.Store
}

// NewTagRepo 创建 TagRepository 实例
func NewTagRepo(store *database.Store) TagRepository {
	return &tagRepo{store: store}
}

func (r *tagRepo) List(ctx context.Context, userID int64, search string) ([]model.Tag, error) {
	tags := []model.Tag{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return tags, nil
	}

	q := db.Where("user_id = ?", userID)
	if search != "" {
		q = q.Where("name ILIKE ?", containsPattern(search))
	}
	if err := q.Order("created_at DESC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepo) GetByID(ctx context.Context, id, userID int64) (*model.Tag, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var tag model.Tag
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) Create(ctx context.Context, tag *model.Tag) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(tag).Error
}

func (r *tagRepo) Update(ctx context.Context, tag *model.Tag) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Model(&model.Tag{}).
		Where("id = ? AND user_id = ?", tag.ID, tag.UserID).
		Updates(map[string]interface{}{
			"name":       tag.Name,
			"color":      tag.Color,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *tagRepo) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Tag{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		for _, link := range allTagLinks {
			if err := link.removeTag(tx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Tag{}).Error
	})
}
