package dto

// ── 仪表盘 DTO ──

// DashboardCounts 各类记录数量
type DashboardCounts struct {
	Manuscripts          int `json:"manuscripts"`
	DraftManuscripts     int `json:"draft_manuscripts"`
	SubmittedManuscripts int `json:"submitted_manuscripts"`
	Conferences          int `json:"conferences"`
	Meetings             int `json:"meetings"`
	Tags                 int `json:"tags"`
	Reminders            int `json:"reminders"`
}

// DeadlineItem 近期截止事项
type DeadlineItem struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

// DashboardResponse 仪表盘汇总
type DashboardResponse struct {
	Counts              DashboardCounts      `json:"counts"`
	UpcomingConferences []ConferenceResponse `json:"upcoming_conferences"`
	UpcomingMeetings    []MeetingResponse    `json:"upcoming_meetings"`
	Deadlines           []DeadlineItem       `json:"deadlines"`
}
