package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// ActivityRepository 跨三类活动的只读视图
type ActivityRepository interface {
	// Resolve 按类型批量加载活动，缺失的 ID 不出现在结果中
	Resolve(ctx context.Context, activityType string, ids []int64) (map[int64]model.Activity, error)
	// Get 加载 userID 拥有的单个活动；用于写路径校验，存储不可用时返回错误
	Get(ctx context.Context, activityType string, id, userID int64) (*model.Activity, error)
}

type activityRepo struct {
	store *database.Store
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(store *database.Store) ActivityRepository {
	return &activityRepo{store: store}
}

// activityQuery 将各活动表投影为统一列：id, user_id, title, deadline, fallback
func activityQuery(db *gorm.DB, activityType string) (*gorm.DB, error) {
	switch activityType {
	case model.ActivityManuscript:
		return db.Table("manuscripts").
			Select("id, user_id, title, submission_date AS deadline, target_date AS fallback"), nil
	case model.ActivityConference:
		return db.Table("conferences").
			Select("id, user_id, name AS title, submission_deadline AS deadline, start_date AS fallback"), nil
	case model.ActivityMeeting:
		return db.Table("meetings").
			Select("id, user_id, title, date AS deadline, NULL::timestamptz AS fallback"), nil
	default:
		return nil, fmt.Errorf("未知的活动类型: %s", activityType)
	}
}

func (r *activityRepo) Resolve(ctx context.Context, activityType string, ids []int64) (map[int64]model.Activity, error) {
	out := make(map[int64]model.Activity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	db, ok := reader(ctx, r.store)
	if !ok {
		return out, nil
	}
	q, err := activityQuery(db, activityType)
	if err != nil {
		return nil, err
	}

	var rows []model.Activity
	if err := q.Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		row.Type = activityType
		out[row.ID] = row
	}
	return out, nil
}

func (r *activityRepo) Get(ctx context.Context, activityType string, id, userID int64) (*model.Activity, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	q, err := activityQuery(db, activityType)
	if err != nil {
		return nil, err
	}

	var rows []model.Activity
	if err := q.Where("id = ? AND user_id = ?", id, userID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	act := rows[0]
	act.Type = activityType
	return &act, nil
}
