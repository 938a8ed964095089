package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
	pkgerrors "research-agenda/backend/pkg/errors"
)

// ── 内存数据集 ──
//
// 各 mock repo 共享同一份数据，以便标签关联、级联删除等跨表行为可被断言。

type memDB struct {
	nextID int64
	clock  time.Time

	users       map[int64]*model.User
	tags        map[int64]*model.Tag
	manuscripts map[int64]*model.Manuscript
	conferences map[int64]*model.Conference
	meetings    map[int64]*model.Meeting
	reminders   map[int64]*model.Reminder
	logs        []model.ReminderLog

	// links[活动类型][活动ID] = 标签ID 列表
	links map[string]map[int64][]int64

	// writeErr 非 nil 时所有写操作返回该错误，模拟存储不可用
	writeErr error
}

func newMemDB() *memDB {
	return &memDB{
		clock:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:       make(map[int64]*model.User),
		tags:        make(map[int64]*model.Tag),
		manuscripts: make(map[int64]*model.Manuscript),
		conferences: make(map[int64]*model.Conference),
		meetings:    make(map[int64]*model.Meeting),
		reminders:   make(map[int64]*model.Reminder),
		links: map[string]map[int64][]int64{
			model.ActivityManuscript: {},
			model.ActivityConference: {},
			model.ActivityMeeting:    {},
		},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

// tick 返回单调递增的时间戳，使 created_at 排序稳定
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) verifyTags(userID int64, ids []int64) ([]int64, error) {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := db.tags[id]
		if !ok || t.UserID != userID {
			return nil, pkgerrors.ErrTagNotOwned
		}
		out = append(out, id)
	}
	return out, nil
}

func (db *memDB) tagsFor(kind string, activityID, userID int64) []model.Tag {
	out := []model.Tag{}
	for _, id := range db.links[kind][activityID] {
		if t, ok := db.tags[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out
}

func (db *memDB) dropActivity(kind string, activityID int64) {
	delete(db.links[kind], activityID)
	for id, r := range db.reminders {
		if r.ActivityType == kind && r.ActivityID == activityID {
			delete(db.reminders, id)
		}
	}
}

func matches(value, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

// newMockRepository 构造由内存数据集支撑的 Repository 聚合
func newMockRepository() (*repository.Repository, *memDB) {
	db := newMemDB()
	return &repository.Repository{
		User:       &mockUserRepo{db: db},
		Tag:        &mockTagRepo{db: db},
		Manuscript: &mockManuscriptRepo{db: db},
		Conference: &mockConferenceRepo{db: db},
		Meeting:    &mockMeetingRepo{db: db},
		Reminder:   &mockReminderRepo{db: db},
		Activity:   &mockActivityRepo{db: db},
	}, db
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Upsert(_ context.Context, user *model.User) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	for _, u := range m.db.users {
		if u.OpenID != user.OpenID {
			continue
		}
		if user.Name != nil {
			u.Name = user.Name
		}
		if user.Email != nil {
			u.Email = user.Email
		}
		if user.LoginMethod != nil {
			u.LoginMethod = user.LoginMethod
		}
		if user.Role != "" {
			u.Role = user.Role
		}
		u.LastSignedIn = user.LastSignedIn
		u.UpdatedAt = m.db.tick()
		*user = *u
		return nil
	}

	cp := *user
	cp.ID = m.db.id()
	if cp.Role == "" {
		cp.Role = model.RoleUser
	}
	cp.CreatedAt = m.db.tick()
	cp.UpdatedAt = cp.CreatedAt
	m.db.users[cp.ID] = &cp
	*user = cp
	return nil
}

func (m *mockUserRepo) GetByOpenID(_ context.Context, openID string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.OpenID == openID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetEmails(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range ids {
		if u, ok := m.db.users[id]; ok && u.Email != nil && *u.Email != "" {
			out[id] = *u.Email
		}
	}
	return out, nil
}

// ── Mock TagRepository ──

type mockTagRepo struct{ db *memDB }

func (m *mockTagRepo) List(_ context.Context, userID int64, search string) ([]model.Tag, error) {
	out := []model.Tag{}
	for _, t := range m.db.tags {
		if t.UserID == userID && matches(t.Name, search) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockTagRepo) GetByID(_ context.Context, id, userID int64) (*model.Tag, error) {
	if t, ok := m.db.tags[id]; ok && t.UserID == userID {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTagRepo) Create(_ context.Context, tag *model.Tag) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	tag.ID = m.db.id()
	tag.CreatedAt = m.db.tick()
	tag.UpdatedAt = tag.CreatedAt
	cp := *tag
	m.db.tags[tag.ID] = &cp
	return nil
}

func (m *mockTagRepo) Update(_ context.Context, tag *model.Tag) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	if t, ok := m.db.tags[tag.ID]; ok && t.UserID == tag.UserID {
		t.Name = tag.Name
		t.Color = tag.Color
		t.UpdatedAt = m.db.tick()
	}
	return nil
}

func (m *mockTagRepo) Delete(_ context.Context, id, userID int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	t, ok := m.db.tags[id]
	if !ok || t.UserID != userID {
		return nil
	}
	for _, byActivity := range m.db.links {
		for activityID, tagIDs := range byActivity {
			kept := tagIDs[:0:0]
			for _, tid := range tagIDs {
				if tid != id {
					kept = append(kept, tid)
				}
			}
			byActivity[activityID] = kept
		}
	}
	delete(m.db.tags, id)
	return nil
}

// ── Mock ManuscriptRepository ──

type mockManuscriptRepo struct{ db *memDB }

func (m *mockManuscriptRepo) List(_ context.Context, userID int64, search string) ([]model.Manuscript, error) {
	out := []model.Manuscript{}
	for _, row := range m.db.manuscripts {
		if row.UserID == userID && matches(row.Title, search) {
			cp := *row
			cp.Tags = m.db.tagsFor(model.ActivityManuscript, cp.ID, userID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockManuscriptRepo) GetByID(_ context.Context, id, userID int64) (*model.Manuscript, error) {
	row, ok := m.db.manuscripts[id]
	if !ok || row.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	cp.Tags = m.db.tagsFor(model.ActivityManuscript, id, userID)
	return &cp, nil
}

func (m *mockManuscriptRepo) Create(_ context.Context, row *model.Manuscript, tagIDs []int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	ids, err := m.db.verifyTags(row.UserID, tagIDs)
	if err != nil {
		return err
	}
	row.ID = m.db.id()
	row.CreatedAt = m.db.tick()
	row.UpdatedAt = row.CreatedAt
	cp := *row
	cp.Tags = nil
	m.db.manuscripts[row.ID] = &cp
	if len(ids) > 0 {
		m.db.links[model.ActivityManuscript][row.ID] = ids
	}
	return nil
}

func (m *mockManuscriptRepo) Update(_ context.Context, row *model.Manuscript, tagIDs *[]int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	existing, ok := m.db.manuscripts[row.ID]
	if !ok || existing.UserID != row.UserID {
		return nil
	}
	var ids []int64
	if tagIDs != nil {
		var err error
		if ids, err = m.db.verifyTags(row.UserID, *tagIDs); err != nil {
			return err
		}
	}
	cp := *row
	cp.Tags = nil
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.db.tick()
	m.db.manuscripts[row.ID] = &cp
	if tagIDs != nil {
		m.db.links[model.ActivityManuscript][row.ID] = ids
	}
	return nil
}

func (m *mockManuscriptRepo) Delete(_ context.Context, id, userID int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	if row, ok := m.db.manuscripts[id]; ok && row.UserID == userID {
		m.db.dropActivity(model.ActivityManuscript, id)
		delete(m.db.manuscripts, id)
	}
	return nil
}

// ── Mock ConferenceRepository ──

type mockConferenceRepo struct{ db *memDB }

func (m *mockConferenceRepo) List(_ context.Context, userID int64, search string) ([]model.Conference, error) {
	out := []model.Conference{}
	for _, row := range m.db.conferences {
		if row.UserID == userID && matches(row.Name, search) {
			cp := *row
			cp.Tags = m.db.tagsFor(model.ActivityConference, cp.ID, userID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *mockConferenceRepo) GetByID(_ context.Context, id, userID int64) (*model.Conference, error) {
	row, ok := m.db.conferences[id]
	if !ok || row.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	cp.Tags = m.db.tagsFor(model.ActivityConference, id, userID)
	return &cp, nil
}

func (m *mockConferenceRepo) Create(_ context.Context, row *model.Conference, tagIDs []int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	ids, err := m.db.verifyTags(row.UserID, tagIDs)
	if err != nil {
		return err
	}
	row.ID = m.db.id()
	row.CreatedAt = m.db.tick()
	row.UpdatedAt = row.CreatedAt
	cp := *row
	cp.Tags = nil
	m.db.conferences[row.ID] = &cp
	if len(ids) > 0 {
		m.db.links[model.ActivityConference][row.ID] = ids
	}
	return nil
}

func (m *mockConferenceRepo) Update(_ context.Context, row *model.Conference, tagIDs *[]int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	existing, ok := m.db.conferences[row.ID]
	if !ok || existing.UserID != row.UserID {
		return nil
	}
	var ids []int64
	if tagIDs != nil {
		var err error
		if ids, err = m.db.verifyTags(row.UserID, *tagIDs); err != nil {
			return err
		}
	}
	cp := *row
	cp.Tags = nil
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.db.tick()
	m.db.conferences[row.ID] = &cp
	if tagIDs != nil {
		m.db.links[model.ActivityConference][row.ID] = ids
	}
	return nil
}

func (m *mockConferenceRepo) Delete(_ context.Context, id, userID int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	if row, ok := m.db.conferences[id]; ok && row.UserID == userID {
		m.db.dropActivity(model.ActivityConference, id)
		delete(m.db.conferences, id)
	}
	return nil
}

// ── Mock MeetingRepository ──

type mockMeetingRepo struct{ db *memDB }

func (m *mockMeetingRepo) List(_ context.Context, userID int64, search string) ([]model.Meeting, error) {
	out := []model.Meeting{}
	for _, row := range m.db.meetings {
		if row.UserID == userID && matches(row.Title, search) {
			cp := *row
			cp.Tags = m.db.tagsFor(model.ActivityMeeting, cp.ID, userID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockMeetingRepo) GetByID(_ context.Context, id, userID int64) (*model.Meeting, error) {
	row, ok := m.db.meetings[id]
	if !ok || row.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	cp.Participants = append(cp.Participants[:0:0], row.Participants...)
	cp.Tags = m.db.tagsFor(model.ActivityMeeting, id, userID)
	return &cp, nil
}

func (m *mockMeetingRepo) Create(_ context.Context, row *model.Meeting, tagIDs []int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	ids, err := m.db.verifyTags(row.UserID, tagIDs)
	if err != nil {
		return err
	}
	row.NormalizeParticipants()
	row.ID = m.db.id()
	row.CreatedAt = m.db.tick()
	row.UpdatedAt = row.CreatedAt
	cp := *row
	cp.Tags = nil
	m.db.meetings[row.ID] = &cp
	if len(ids) > 0 {
		m.db.links[model.ActivityMeeting][row.ID] = ids
	}
	return nil
}

func (m *mockMeetingRepo) Update(_ context.Context, row *model.Meeting, tagIDs *[]int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	existing, ok := m.db.meetings[row.ID]
	if !ok || existing.UserID != row.UserID {
		return nil
	}
	var ids []int64
	if tagIDs != nil {
		var err error
		if ids, err = m.db.verifyTags(row.UserID, *tagIDs); err != nil {
			return err
		}
	}
	row.NormalizeParticipants()
	cp := *row
	cp.Tags = nil
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.db.tick()
	m.db.meetings[row.ID] = &cp
	if tagIDs != nil {
		m.db.links[model.ActivityMeeting][row.ID] = ids
	}
	return nil
}

func (m *mockMeetingRepo) Delete(_ context.Context, id, userID int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	if row, ok := m.db.meetings[id]; ok && row.UserID == userID {
		m.db.dropActivity(model.ActivityMeeting, id)
		delete(m.db.meetings, id)
	}
	return nil
}

// ── Mock ReminderRepository ──

type mockReminderRepo struct{ db *memDB }

func (m *mockReminderRepo) ListByUser(_ context.Context, userID int64) ([]model.Reminder, error) {
	out := []model.Reminder{}
	for _, r := range m.db.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockReminderRepo) GetByID(_ context.Context, id, userID int64) (*model.Reminder, error) {
	if r, ok := m.db.reminders[id]; ok && r.UserID == userID {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReminderRepo) Create(_ context.Context, r *model.Reminder) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	r.ID = m.db.id()
	r.CreatedAt = m.db.tick()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.db.reminders[r.ID] = &cp
	return nil
}

func (m *mockReminderRepo) UpdateSettings(_ context.Context, id, userID int64, s repository.ReminderSettings) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	r, ok := m.db.reminders[id]
	if !ok || r.UserID != userID || s.Empty() {
		return nil
	}
	if s.DaysBeforeEvent != nil {
		r.DaysBeforeEvent = *s.DaysBeforeEvent
	}
	if s.ReminderTime != nil {
		r.ReminderTime = *s.ReminderTime
	}
	if s.IsEnabled != nil {
		r.IsEnabled = *s.IsEnabled
	}
	r.UpdatedAt = m.db.tick()
	return nil
}

func (m *mockReminderRepo) Delete(_ context.Context, id, userID int64) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	if r, ok := m.db.reminders[id]; ok && r.UserID == userID {
		delete(m.db.reminders, id)
	}
	return nil
}

func (m *mockReminderRepo) ListEnabled(_ context.Context) ([]model.Reminder, error) {
	out := []model.Reminder{}
	for _, r := range m.db.reminders {
		if r.IsEnabled {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockReminderRepo) MarkSent(_ context.Context, id int64, at time.Time) (bool, error) {
	if m.db.writeErr != nil {
		return false, m.db.writeErr
	}
	r, ok := m.db.reminders[id]
	if !ok || (r.LastSentAt != nil && !r.LastSentAt.Before(at)) {
		return false, nil
	}
	r.LastSentAt = &at
	return true, nil
}

func (m *mockReminderRepo) CreateLog(_ context.Context, log *model.ReminderLog) error {
	if m.db.writeErr != nil {
		return m.db.writeErr
	}
	log.ID = m.db.id()
	m.db.logs = append(m.db.logs, *log)
	return nil
}

func (m *mockReminderRepo) ListLogs(_ context.Context, reminderID, userID int64, limit int) ([]model.ReminderLog, error) {
	r, ok := m.db.reminders[reminderID]
	if !ok || r.UserID != userID {
		return []model.ReminderLog{}, nil
	}
	out := []model.ReminderLog{}
	for i := len(m.db.logs) - 1; i >= 0; i-- {
		if m.db.logs[i].ReminderID == reminderID {
			out = append(out, m.db.logs[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct{ db *memDB }

func (m *mockActivityRepo) lookup(kind string, id int64) (model.Activity, bool) {
	switch kind {
	case model.ActivityManuscript:
		if row, ok := m.db.manuscripts[id]; ok {
			return model.Activity{Type: kind, ID: id, UserID: row.UserID, Title: row.Title,
				Deadline: row.SubmissionDate, Fallback: row.TargetDate}, true
		}
	case model.ActivityConference:
		if row, ok := m.db.conferences[id]; ok {
			start := row.StartDate
			return model.Activity{Type: kind, ID: id, UserID: row.UserID, Title: row.Name,
				Deadline: row.SubmissionDeadline, Fallback: &start}, true
		}
	case model.ActivityMeeting:
		if row, ok := m.db.meetings[id]; ok {
			date := row.Date
			return model.Activity{Type: kind, ID: id, UserID: row.UserID, Title: row.Title,
				Deadline: &date}, true
		}
	}
	return model.Activity{}, false
}

func (m *mockActivityRepo) Resolve(_ context.Context, kind string, ids []int64) (map[int64]model.Activity, error) {
	out := make(map[int64]model.Activity, len(ids))
	for _, id := range ids {
		if a, ok := m.lookup(kind, id); ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *mockActivityRepo) Get(_ context.Context, kind string, id, userID int64) (*model.Activity, error) {
	if m.db.writeErr != nil {
		return nil, m.db.writeErr
	}
	a, ok := m.lookup(kind, id)
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}
