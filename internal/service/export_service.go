package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
type ExportService interface {
	// ExportCalendar 导出会议、组会与稿件日期为 iCalendar
	ExportCalendar(ctx context.Context, userID int64) (*bytes.Buffer, string, error)
	// ExportManuscripts 导出稿件清单为 Excel
	ExportManuscripts(ctx context.Context, userID int64) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar
// ═══════════════════════════════════════════════════════════
//
// 事件 UID 形如 "conference-12@research-agenda"，重复导入时日历客户端按 UID 去重。
//   - 会议：全天事件 start_date ~ end_date；投稿截止另生成一个全天事件
//   - 组会：date 起，duration 分钟（缺省 60）
//   - 稿件：submission_date / target_date 各一个全天事件

func (s *exportService) ExportCalendar(ctx context.Context, userID int64) (*bytes.Buffer, string, error) {
	conferences, err := s.repo.Conference.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("导出日历加载会议失败", zap.Error(err))
		return nil, "", err
	}
	meetings, err := s.repo.Meeting.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("导出日历加载组会失败", zap.Error(err))
		return nil, "", err
	}
	manuscripts, err := s.repo.Manuscript.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("导出日历加载稿件失败", zap.Error(err))
		return nil, "", err
	}

	now := time.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//research-agenda//calendar export//ZH")
	cal.SetXWRCalName("Research Agenda")

	for i := range conferences {
		c := &conferences[i]
		evt := cal.AddEvent(eventUID("conference", c.ID))
		evt.SetDtStampTime(now)
		evt.SetSummary(c.Name)
		evt.SetAllDayStartAt(c.StartDate)
		end := c.StartDate
		if c.EndDate != nil {
			end = *c.EndDate
		}
		// DTEND 为开区间，全天事件需顺延一天
		evt.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if c.Location != nil {
			evt.SetLocation(*c.Location)
		}
		if c.Website != nil {
			evt.SetURL(*c.Website)
		}
		if c.Notes != nil {
			evt.SetDescription(*c.Notes)
		}

		if c.SubmissionDeadline != nil {
			addAllDay(cal, eventUID("conference-deadline", c.ID), now, "投稿截止: "+c.Name, *c.SubmissionDeadline)
		}
	}

	for i := range meetings {
		m := &meetings[i]
		evt := cal.AddEvent(eventUID("meeting", m.ID))
		evt.SetDtStampTime(now)
		evt.SetSummary(m.Title)
		evt.SetStartAt(m.Date)
		duration := 60
		if m.Duration != nil && *m.Duration > 0 {
			duration = *m.Duration
		}
		evt.SetEndAt(m.Date.Add(time.Duration(duration) * time.Minute))
		if m.Location != nil {
			evt.SetLocation(*m.Location)
		}
		if desc := meetingDescription(m); desc != "" {
			evt.SetDescription(desc)
		}
	}

	for i := range manuscripts {
		m := &manuscripts[i]
		if m.SubmissionDate != nil {
			addAllDay(cal, eventUID("manuscript-submission", m.ID), now, "投稿: "+m.Title, *m.SubmissionDate)
		}
		if m.TargetDate != nil {
			addAllDay(cal, eventUID("manuscript-target", m.ID), now, "目标: "+m.Title, *m.TargetDate)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "research-agenda.ics", nil
}

func eventUID(kind string, id int64) string {
	return fmt.Sprintf("%s-%d@research-agenda", kind, id)
}

func addAllDay(cal *ics.Calendar, uid string, stamp time.Time, summary string, day time.Time) {
	evt := cal.AddEvent(uid)
	evt.SetDtStampTime(stamp)
	evt.SetSummary(summary)
	evt.SetAllDayStartAt(day)
	evt.SetAllDayEndAt(day.AddDate(0, 0, 1))
}

func meetingDescription(m *model.Meeting) string {
	var parts []string
	if len(m.Participants) > 0 {
		parts = append(parts, "参与人: "+strings.Join(m.Participants, ", "))
	}
	if m.Agenda != nil && *m.Agenda != "" {
		parts = append(parts, "议程: "+*m.Agenda)
	}
	if m.Notes != nil && *m.Notes != "" {
		parts = append(parts, *m.Notes)
	}
	return strings.Join(parts, "\n")
}

// ═══════════════════════════════════════════════════════════
// ExportManuscripts
// ═══════════════════════════════════════════════════════════
//
// 表头: | 标题 | 状态 | 期刊 | 投稿日期 | 目标日期 | 标签 | 备注 |

var manuscriptStatusNames = map[string]string{
	model.ManuscriptDraft:       "草稿",
	model.ManuscriptSubmitted:   "已投稿",
	model.ManuscriptUnderReview: "审稿中",
	model.ManuscriptAccepted:    "已录用",
	model.ManuscriptRejected:    "被拒",
	model.ManuscriptPublished:   "已发表",
}

func (s *exportService) ExportManuscripts(ctx context.Context, userID int64) (*bytes.Buffer, string, error) {
	manuscripts, err := s.repo.Manuscript.List(ctx, userID, "")
	if err != nil {
		s.logger.Error("导出稿件失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "稿件"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 40)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"标题", "状态", "期刊", "投稿日期", "目标日期", "标签", "备注"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i := range manuscripts {
		m := &manuscripts[i]
		row := i + 2

		status := manuscriptStatusNames[m.Status]
		if status == "" {
			status = m.Status
		}
		tagNames := make([]string, 0, len(m.Tags))
		for _, t := range m.Tags {
			tagNames = append(tagNames, t.Name)
		}

		f.SetCellValue(sheetName, cell("A", row), m.Title)
		f.SetCellValue(sheetName, cell("B", row), status)
		f.SetCellValue(sheetName, cell("C", row), derefString(m.Journal))
		f.SetCellValue(sheetName, cell("D", row), formatDate(m.SubmissionDate))
		f.SetCellValue(sheetName, cell("E", row), formatDate(m.TargetDate))
		f.SetCellValue(sheetName, cell("F", row), strings.Join(tagNames, ", "))
		f.SetCellValue(sheetName, cell("G", row), derefString(m.Notes))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, "manuscripts.xlsx", nil
}

// ── 内部辅助 ──

func colName(index int) string {
	name, _ := excelize.ColumnNumberToName(index + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
