package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
)

const (
	deadlineWindow = 7 * 24 * time.Hour
	upcomingLimit  = 5
)

// DashboardService 仪表盘汇总接口
type DashboardService interface {
	Summary(ctx context.Context, userID int64, now time.Time) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// Summary 汇总记录数量、即将到来的会议/组会以及未来 7 天内的截止事项
func (s *dashboardService) Summary(ctx context.Context, userID int64, now time.Time) (*dto.DashboardResponse, error) {
	manuscripts, err := s.repo.Manuscript.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("仪表盘加载稿件失败", zap.Error(err))
		return nil, err
	}
	conferences, err := s.repo.Conference.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("仪表盘加载会议失败", zap.Error(err))
		return nil, err
	}
	meetings, err := s.repo.Meeting.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("仪表盘加载组会失败", zap.Error(err))
		return nil, err
	}
	tags, err := s.repo.Tag.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("仪表盘加载标签失败", zap.Error(err))
		return nil, err
	}
	reminders, err := s.repo.Reminder.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("仪表盘加载提醒失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Counts: dto.DashboardCounts{
			Manuscripts: len(manuscripts),
			Conferences: len(conferences),
			Meetings:    len(meetings),
			Tags:        len(tags),
			Reminders:   len(reminders),
		},
		UpcomingConferences: []dto.ConferenceResponse{},
		UpcomingMeetings:    []dto.MeetingResponse{},
		Deadlines:           []dto.DeadlineItem{},
	}

	horizon := now.Add(deadlineWindow)
	inWindow := func(t *time.Time) bool {
		return t != nil && !t.Before(now) && !t.After(horizon)
	}

	for i := range manuscripts {
		m := &manuscripts[i]
		switch m.Status {
		case model.ManuscriptDraft:
			resp.Counts.DraftManuscripts++
		case model.ManuscriptSubmitted, model.ManuscriptUnderReview:
			resp.Counts.SubmittedManuscripts++
		}
		if inWindow(m.SubmissionDate) {
			resp.Deadlines = append(resp.Deadlines, deadline(model.ActivityManuscript, m.ID, m.Title, "投稿日期", *m.SubmissionDate))
		}
		if inWindow(m.TargetDate) {
			resp.Deadlines = append(resp.Deadlines, deadline(model.ActivityManuscript, m.ID, m.Title, "目标日期", *m.TargetDate))
		}
	}

	// 列表按 start_date 降序返回，此处倒序遍历得到升序
	for i := len(conferences) - 1; i >= 0; i-- {
		c := &conferences[i]
		if !c.StartDate.Before(now) && len(resp.UpcomingConferences) < upcomingLimit {
			resp.UpcomingConferences = append(resp.UpcomingConferences, toConferenceResponse(c))
		}
		if inWindow(c.SubmissionDeadline) {
			resp.Deadlines = append(resp.Deadlines, deadline(model.ActivityConference, c.ID, c.Name, "投稿截止", *c.SubmissionDeadline))
		}
	}

	for i := len(meetings) - 1; i >= 0; i-- {
		m := &meetings[i]
		if !m.Date.Before(now) && len(resp.UpcomingMeetings) < upcomingLimit {
			resp.UpcomingMeetings = append(resp.UpcomingMeetings, toMeetingResponse(m))
		}
		if inWindow(&m.Date) {
			resp.Deadlines = append(resp.Deadlines, deadline(model.ActivityMeeting, m.ID, m.Title, "组会", m.Date))
		}
	}

	sort.SliceStable(resp.Deadlines, func(i, j int) bool {
		return resp.Deadlines[i].Date < resp.Deadlines[j].Date
	})

	return resp, nil
}

func deadline(activityType string, id int64, title, label string, at time.Time) dto.DeadlineItem {
	return dto.DeadlineItem{
		Type:  activityType,
		ID:    id,
		Title: title,
		Label: label,
		Date:  formatTime(at),
	}
}
