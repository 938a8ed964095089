package repository

import (
	"context"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// MeetingRepository 组会数据访问接口
type MeetingRepository interface {
	List(ctx context.Context, userID int64, search string) ([]model.Meeting, error)
	GetByID(ctx context.Context, id, userID int64) (*model.Meeting, error)
	Create(ctx context.Context, m *model.Meeting, tagIDs []int64) error
	Update(ctx context.Context, m *model.Meeting, tagIDs *[]int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type meetingRepo struct {
	store *database.Store
}

// NewMeetingRepo 创建 MeetingRepository 实例
func NewMeetingRepo(store *database.Store) MeetingRepository {
	return &meetingRepo{store: store}
}

func (r *meetingRepo) List(ctx context.Context, userID int64, search string) ([]model.Meeting, error) {
	meetings := []model.Meeting{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return meetings, nil
	}

	q := db.Where("user_id = ?", userID)
	if search != "" {
		q = q.Where("title ILIKE ?", containsPattern(search))
	}
	if err := q.Order("date DESC").Find(&meetings).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(meetings))
	for i := range meetings {
		ids[i] = meetings[i].ID
	}
	tags, err := meetingTags.load(db, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range meetings {
		meetings[i].NormalizeParticipants()
		meetings[i].Tags = tagsOrEmpty(tags[meetings[i].ID])
	}
	return meetings, nil
}

func (r *meetingRepo) GetByID(ctx context.Context, id, userID int64) (*model.Meeting, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var m model.Meeting
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, err
	}
	tags, err := meetingTags.load(db, userID, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	m.NormalizeParticipants()
	m.Tags = tagsOrEmpty(tags[m.ID])
	return &m, nil
}

func (r *meetingRepo) Create(ctx context.Context, m *model.Meeting, tagIDs []int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	m.NormalizeParticipants()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return meetingTags.attach(tx, m.ID, m.UserID, tagIDs)
	})
}

func (r *meetingRepo) Update(ctx context.Context, m *model.Meeting, tagIDs *[]int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	m.NormalizeParticipants()
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Meeting{}).
			Where("id = ? AND user_id = ?", m.ID, m.UserID).
			Updates(map[string]interface{}{
				"title":        m.Title,
				"date":         m.Date,
				"duration":     m.Duration,
				"participants": m.Participants,
				"location":     m.Location,
				"agenda":       m.Agenda,
				"notes":        m.Notes,
				"updated_at":   gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 || tagIDs == nil {
			return nil
		}
		return meetingTags.replace(tx, m.ID, m.UserID, *tagIDs)
	})
}

func (r *meetingRepo) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Meeting{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if err := meetingTags.clear(tx, id); err != nil {
			return err
		}
		if err := deleteReminders(tx, model.ActivityMeeting, id, userID); err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Meeting{}).Error
	})
}
