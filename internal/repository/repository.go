package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"research-agenda/backend/pkg/database"
	pkgerrors "research-agenda/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Tag        TagRepository
	Manuscript ManuscriptRepository
	Conference ConferenceRepository
	Meeting    MeetingRepository
	Reminder   ReminderRepository
	Activity   ActivityRepository
}

// NewRepository 创建 Repository 聚合，所有实现共享同一个惰性连接句柄
func NewRepository(store *database.Store) *Repository {
	return &Repository{
		User:       NewUserRepo(store),
		Tag:        NewTagRepo(store),
		Manuscript: NewManuscriptRepo(store),
		Conference: NewConferenceRepo(store),
		Meeting:    NewMeetingRepo(store),
		Reminder:   NewReminderRepo(store),
		Activity:   NewActivityRepo(store),
	}
}

// reader 返回读连接；存储不可用时 ok 为 false，调用方返回空结果而不是错误
func reader(ctx context.Context, store *database.Store) (*gorm.DB, bool) {
	db, err := store.DB(ctx)
	if err != nil {
		return nil, false
	}
	return db, true
}

// IsStoreUnavailable 判断错误是否源于存储不可用
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, pkgerrors.ErrStoreUnavailable)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 构造大小写不敏感的子串匹配模式，转义 LIKE 通配符
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
