package service

import (
	"time"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
)

// ── 模型 → 响应 DTO ──

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toTagResponse(t *model.Tag) dto.TagResponse {
	return dto.TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
}

func toTagResponses(tags []model.Tag) []dto.TagResponse {
	out := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, toTagResponse(&tags[i]))
	}
	return out
}

func toManuscriptResponse(m *model.Manuscript) dto.ManuscriptResponse {
	return dto.ManuscriptResponse{
		ID:             m.ID,
		Title:          m.Title,
		Status:         m.Status,
		Journal:        m.Journal,
		SubmissionDate: formatTimePtr(m.SubmissionDate),
		TargetDate:     formatTimePtr(m.TargetDate),
		Notes:          m.Notes,
		Tags:           toTagResponses(m.Tags),
		CreatedAt:      formatTime(m.CreatedAt),
		UpdatedAt:      formatTime(m.UpdatedAt),
	}
}

func toConferenceResponse(c *model.Conference) dto.ConferenceResponse {
	return dto.ConferenceResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Location:           c.Location,
		StartDate:          formatTime(c.StartDate),
		EndDate:            formatTimePtr(c.EndDate),
		SubmissionDeadline: formatTimePtr(c.SubmissionDeadline),
		AttendanceStatus:   c.AttendanceStatus,
		Website:            c.Website,
		Notes:              c.Notes,
		Tags:               toTagResponses(c.Tags),
		CreatedAt:          formatTime(c.CreatedAt),
		UpdatedAt:          formatTime(c.UpdatedAt),
	}
}

func toMeetingResponse(m *model.Meeting) dto.MeetingResponse {
	participants := make([]string, 0, len(m.Participants))
	participants = append(participants, m.Participants...)
	return dto.MeetingResponse{
		ID:           m.ID,
		Title:        m.Title,
		Date:         formatTime(m.Date),
		Duration:     m.Duration,
		Participants: participants,
		Location:     m.Location,
		Agenda:       m.Agenda,
		Notes:        m.Notes,
		Tags:         toTagResponses(m.Tags),
		CreatedAt:    formatTime(m.CreatedAt),
		UpdatedAt:    formatTime(m.UpdatedAt),
	}
}

func toReminderResponse(r *model.Reminder) dto.ReminderResponse {
	return dto.ReminderResponse{
		ID:              r.ID,
		ActivityType:    r.ActivityType,
		ActivityID:      r.ActivityID,
		ReminderType:    r.ReminderType,
		DaysBeforeEvent: r.DaysBeforeEvent,
		ReminderTime:    r.ReminderTime,
		IsEnabled:       r.IsEnabled,
		LastSentAt:      formatTimePtr(r.LastSentAt),
		CreatedAt:       formatTime(r.CreatedAt),
		UpdatedAt:       formatTime(r.UpdatedAt),
	}
}

func toReminderLogResponse(l *model.ReminderLog) dto.ReminderLogResponse {
	return dto.ReminderLogResponse{
		ID:           l.ID,
		ReminderID:   l.ReminderID,
		Email:        l.Email,
		SentAt:       formatTime(l.SentAt),
		Status:       l.Status,
		ErrorMessage: l.ErrorMessage,
	}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		OpenID:       u.OpenID,
		Name:         u.Name,
		Email:        u.Email,
		LoginMethod:  u.LoginMethod,
		Role:         u.Role,
		LastSignedIn: formatTime(u.LastSignedIn),
		CreatedAt:    formatTime(u.CreatedAt),
	}
}
