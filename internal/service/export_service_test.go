package service

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, *memDB) {
	t.Helper()
	repo, db := newMockRepository()
	logger := zap.NewNop()
	ctx := context.Background()
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	tagSvc := NewTagService(repo, logger)
	tagID := mustCreateTag(t, tagSvc, 1, "vision")

	msSvc := NewManuscriptService(repo, logger)
	if _, err := msSvc.Create(ctx, 1, &dto.SaveManuscriptRequest{
		Title:          "Paper A",
		Status:         model.ManuscriptSubmitted,
		Journal:        ptr("TPAMI"),
		SubmissionDate: ptr(day),
		TagIDs:         &[]int64{tagID},
	}); err != nil {
		t.Fatalf("创建稿件失败: %v", err)
	}
	if _, err := NewConferenceService(repo, logger).Create(ctx, 1, &dto.SaveConferenceRequest{
		Name:               "CVPR",
		StartDate:          day.AddDate(0, 1, 0),
		EndDate:            ptr(day.AddDate(0, 1, 4)),
		SubmissionDeadline: ptr(day.AddDate(0, 0, -10)),
		Location:           ptr("Seattle"),
	}); err != nil {
		t.Fatalf("创建会议失败: %v", err)
	}
	if _, err := NewMeetingService(repo, logger).Create(ctx, 1, &dto.SaveMeetingRequest{
		Title:        "Lab sync",
		Date:         day.Add(15 * time.Hour),
		Duration:     ptr(30),
		Participants: []string{"Alice", "Bob"},
	}); err != nil {
		t.Fatalf("创建组会失败: %v", err)
	}

	return NewExportService(repo, logger), db
}

// ── ExportCalendar ──

func TestExportService_ExportCalendar(t *testing.T) {
	svc, _ := setupTestExportService(t)

	buf, filename, err := svc.ExportCalendar(context.Background(), 1)
	if err != nil {
		t.Fatalf("导出日历失败: %v", err)
	}
	if filename != "research-agenda.ics" {
		t.Errorf("文件名不符: %s", filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("导出内容应为合法 iCalendar: %v", err)
	}

	summaries := make(map[string]*ics.VEvent)
	for _, evt := range cal.Events() {
		summaries[evt.GetProperty(ics.ComponentPropertySummary).Value] = evt
	}
	for _, want := range []string{"CVPR", "投稿截止: CVPR", "Lab sync", "投稿: Paper A"} {
		if _, ok := summaries[want]; !ok {
			t.Errorf("缺少事件 %q", want)
		}
	}
	if len(cal.Events()) != 4 {
		t.Errorf("期望 4 个事件，实际: %d", len(cal.Events()))
	}

	meeting := summaries["Lab sync"]
	if meeting == nil {
		t.Fatal("缺少组会事件")
	}
	start, err := meeting.GetStartAt()
	if err != nil {
		t.Fatalf("解析开始时间失败: %v", err)
	}
	end, err := meeting.GetEndAt()
	if err != nil {
		t.Fatalf("解析结束时间失败: %v", err)
	}
	if end.Sub(start) != 30*time.Minute {
		t.Errorf("组会时长应为 30 分钟，实际: %v", end.Sub(start))
	}
	if uid := meeting.Id(); !strings.HasPrefix(uid, "meeting-") {
		t.Errorf("UID 格式不符: %s", uid)
	}
}

func TestExportService_ExportCalendar_OnlyOwnRecords(t *testing.T) {
	svc, _ := setupTestExportService(t)

	buf, _, err := svc.ExportCalendar(context.Background(), 2)
	if err != nil {
		t.Fatalf("导出日历失败: %v", err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if n := len(cal.Events()); n != 0 {
		t.Errorf("其他用户不应导出任何事件，实际: %d", n)
	}
}

// ── ExportManuscripts ──

func TestExportService_ExportManuscripts(t *testing.T) {
	svc, _ := setupTestExportService(t)

	buf, filename, err := svc.ExportManuscripts(context.Background(), 1)
	if err != nil {
		t.Fatalf("导出稿件失败: %v", err)
	}
	if filename != "manuscripts.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("稿件")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头 + 1 行数据，实际: %d 行", len(rows))
	}
	if rows[0][0] != "标题" {
		t.Errorf("表头不符: %v", rows[0])
	}
	row := rows[1]
	if row[0] != "Paper A" || row[1] != "已投稿" || row[2] != "TPAMI" || row[3] != "2026-05-04" || row[5] != "vision" {
		t.Errorf("数据行不符: %v", row)
	}
}
