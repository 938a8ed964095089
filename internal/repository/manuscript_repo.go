package repository

import (
	"context"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// ManuscriptRepository 稿件数据访问接口，所有操作按 user_id 限定
type ManuscriptRepository interface {
	List(ctx context.Context, userID int64, search string) ([]model.Manuscript, error)
	GetByID(ctx context.Context, id, userID int64) (*model.Manuscript, error)
	// Create 插入稿件及其标签关联，回填 m.ID
	Create(ctx context.Context, m *model.Manuscript, tagIDs []int64) error
	// Update 整体替换 (m.ID, m.UserID) 命中的行；tagIDs 为 nil 时不改动关联
	Update(ctx context.Context, m *model.Manuscript, tagIDs *[]int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type manuscriptRepo struct {
	store *database.Store
}

// NewManuscriptRepo 创建 ManuscriptRepository 实例
func NewManuscriptRepo(store *database.Store) ManuscriptRepository {
	return &manuscriptRepo{store: store}
}

func (r *manuscriptRepo) List(ctx context.Context, userID int64, search string) ([]model.Manuscript, error) {
	manuscripts := []model.Manuscript{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return manuscripts, nil
	}

	q := db.Where("user_id = ?", userID)
	if search != "" {
		q = q.Where("title ILIKE ?", containsPattern(search))
	}
	if err := q.Order("created_at DESC").Find(&manuscripts).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(manuscripts))
	for i := range manuscripts {
		ids[i] = manuscripts[i].ID
	}
	tags, err := manuscriptTags.load(db, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range manuscripts {
		manuscripts[i].Tags = tagsOrEmpty(tags[manuscripts[i].ID])
	}
	return manuscripts, nil
}

func (r *manuscriptRepo) GetByID(ctx context.Context, id, userID int64) (*model.Manuscript, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var m model.Manuscript
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, err
	}
	tags, err := manuscriptTags.load(db, userID, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	m.Tags = tagsOrEmpty(tags[m.ID])
	return &m, nil
}

func (r *manuscriptRepo) Create(ctx context.Context, m *model.Manuscript, tagIDs []int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return manuscriptTags.attach(tx, m.ID, m.UserID, tagIDs)
	})
}

func (r *manuscriptRepo) Update(ctx context.Context, m *model.Manuscript, tagIDs *[]int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Manuscript{}).
			Where("id = ? AND user_id = ?", m.ID, m.UserID).
			Updates(map[string]interface{}{
				"title":           m.Title,
				"status":          m.Status,
				"journal":         m.Journal,
				"submission_date": m.SubmissionDate,
				"target_date":     m.TargetDate,
				"notes":           m.Notes,
				"updated_at":      gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		// 未命中：不存在或不属于该用户，静默忽略
		if result.RowsAffected == 0 || tagIDs == nil {
			return nil
		}
		return manuscriptTags.replace(tx, m.ID, m.UserID, *tagIDs)
	})
}

func (r *manuscriptRepo) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Manuscript{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if err := manuscriptTags.clear(tx, id); err != nil {
			return err
		}
		if err := deleteReminders(tx, model.ActivityManuscript, id, userID); err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Manuscript{}).Error
	})
}
