package repository

import (
	"context"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// ConferenceRepository 学术会议数据访问接口
type ConferenceRepository interface {
	List(ctx context.Context, userID int64, search string) ([]model.Conference, error)
	GetByID(ctx context.Context, id, userID int64) (*model.Conference, error)
	Create(ctx context.Context, c *model.Conference, tagIDs []int64) error
	Update(ctx context.Context, c *model.Conference, tagIDs *[]int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type conferenceRepo struct {
	store *database.Store
}

// NewConferenceRepo 创建 ConferenceRepository 实例
func NewConferenceRepo(store *database.Store) ConferenceRepository {
	return &conferenceRepo{store: store}
}

func (r *conferenceRepo) List(ctx context.Context, userID int64, search string) ([]model.Conference, error) {
	conferences := []model.Conference{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return conferences, nil
	}

	q := db.Where("user_id = ?", userID)
	if search != "" {
		q = q.Where("name ILIKE ?", containsPattern(search))
	}
	if err := q.Order("start_date DESC").Find(&conferences).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(conferences))
	for i := range conferences {
		ids[i] = conferences[i].ID
	}
	tags, err := conferenceTags.load(db, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range conferences {
		conferences[i].Tags = tagsOrEmpty(tags[conferences[i].ID])
	}
	return conferences, nil
}

func (r *conferenceRepo) GetByID(ctx context.Context, id, userID int64) (*model.Conference, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var c model.Conference
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		return nil, err
	}
	tags, err := conferenceTags.load(db, userID, []int64{c.ID})
	if err != nil {
		return nil, err
	}
	c.Tags = tagsOrEmpty(tags[c.ID])
	return &c, nil
}

func (r *conferenceRepo) Create(ctx context.Context, c *model.Conference, tagIDs []int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return conferenceTags.attach(tx, c.ID, c.UserID, tagIDs)
	})
}

func (r *conferenceRepo) Update(ctx context.Context, c *model.Conference, tagIDs *[]int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Conference{}).
			Where("id = ? AND user_id = ?", c.ID, c.UserID).
			Updates(map[string]interface{}{
				"name":                c.Name,
				"location":            c.Location,
				"start_date":          c.StartDate,
				"end_date":            c.EndDate,
				"submission_deadline": c.SubmissionDeadline,
				"attendance_status":   c.AttendanceStatus,
				"website":             c.Website,
				"notes":               c.Notes,
				"updated_at":          gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 || tagIDs == nil {
			return nil
		}
		return conferenceTags.replace(tx, c.ID, c.UserID, *tagIDs)
	})
}

func (r *conferenceRepo) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Conference{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if err := conferenceTags.clear(tx, id); err != nil {
			return err
		}
		if err := deleteReminders(tx, model.ActivityConference, id, userID); err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Conference{}).Error
	})
}
