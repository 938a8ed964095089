package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Upsert 按 open_id 插入或更新，回填完整的用户记录
	Upsert(ctx context.Context, user *model.User) error
	GetByOpenID(ctx context.Context, openID string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetEmails 批量查询用户邮箱，未设置邮箱的用户不出现在结果中
	GetEmails(ctx context.Context, ids []int64) (map[int64]string, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	store *database.Store
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(store *database.Store) UserRepository {
	return &userRepo{store: store}
}

func (r *userRepo) Upsert(ctx context.Context, user *model.User) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":           gorm.Expr("COALESCE(EXCLUDED.name, users.name)"),
		"email":          gorm.Expr("COALESCE(EXCLUDED.email, users.email)"),
		"login_method":   gorm.Expr("COALESCE(EXCLUDED.login_method, users.login_method)"),
		"last_signed_in": gorm.Expr("EXCLUDED.last_signed_in"),
		"updated_at":     gorm.Expr("NOW()"),
	}
	// 未指定角色时：新用户取默认值，已有用户保持原角色
	if user.Role != "" {
		updates["role"] = gorm.Expr("EXCLUDED.role")
	} else {
		user.Role = model.RoleUser
	}
	if user.LastSignedIn.IsZero() {
		user.LastSignedIn = time.Now()
	}

	return db.Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "open_id"}},
			DoUpdates: clause.Assignments(updates),
		},
		clause.Returning{},
	).Create(user).Error
}

func (r *userRepo) GetByOpenID(ctx context.Context, openID string) (*model.User, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := db.Where("open_id = ?", openID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetEmails(ctx context.Context, ids []int64) (map[int64]string, error) {
	emails := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}
	db, ok := reader(ctx, r.store)
	if !ok {
		return emails, nil
	}

	var users []model.User
	if err := db.Select("id", "email").
		Where("id IN ? AND email IS NOT NULL AND email <> ''", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email != nil {
			emails[u.ID] = *u.Email
		}
	}
	return emails, nil
}
