package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出复用出欠聚合视图：候补为列、参与者为行，编码渲染为文字
//   - iCal 导出将能解析为日期的候补日程生成全天/定时 VEVENT，解析失败的跳过
//   - 均以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportGrid 导出出欠表为 Excel (.xlsx)
	ExportGrid(ctx context.Context, scheduleID string, viewer dto.Viewer) (*bytes.Buffer, string, error)
	// ExportICal 导出候补日程为 iCalendar (.ics)
	ExportICal(ctx context.Context, scheduleID string, viewer dto.Viewer) (*bytes.Buffer, string, error)
}

type exportService struct {
	schedules ScheduleService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedules ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{schedules: schedules, logger: logger}
}

// availabilityLabels 出欠编码 → 表格文字
var availabilityLabels = map[int]string{
	0: "缺席",
	1: "未定",
	2: "出席",
}

// ════════════════════════════════════════════════════════════
// ExportGrid — 出欠表导出为 Excel
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "出欠表"
//   - 首行：参与者 | 候补1 | 候补2 | … | 留言
//   - 每参与者一行，单元格为 出席/未定/缺席

func (s *exportService) ExportGrid(ctx context.Context, scheduleID string, viewer dto.Viewer) (*bytes.Buffer, string, error) {
	view, err := s.schedules.GetScheduleView(ctx, scheduleID, viewer)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "出欠表"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("创建 Sheet 失败: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// 首行表头
	header := make([]interface{}, 0, len(view.Candidates)+2)
	header = append(header, "参与者")
	for _, c := range view.Candidates {
		header = append(header, c.Name)
	}
	header = append(header, "留言")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("写入表头失败: %w", err)
	}

	// 每参与者一行
	for i, u := range view.Users {
		row := make([]interface{}, 0, len(view.Candidates)+2)
		row = append(row, u.Username)
		for _, c := range view.Candidates {
			row = append(row, availabilityLabels[view.AvailabilityMap[u.ID][c.ID]])
		}
		row = append(row, view.CommentMap[u.ID])
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("写入数据行失败: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_出欠表.xlsx", sanitizeFilename(view.Schedule.ScheduleName))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportICal — 候补日程导出为 iCalendar
// ════════════════════════════════════════════════════════════

func (s *exportService) ExportICal(ctx context.Context, scheduleID string, viewer dto.Viewer) (*bytes.Buffer, string, error) {
	view, err := s.schedules.GetScheduleView(ctx, scheduleID, viewer)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schedule-arranger//JP")

	now := time.Now()
	for _, c := range view.Candidates {
		start, allDay, ok := parseCandidateDate(c.Name, now)
		if !ok {
			// 自由文本候补（如「随时」）不生成事件
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("candidate-%d@schedule-arranger", c.ID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetSummary(fmt.Sprintf("%s %s", view.Schedule.ScheduleName, c.Name))
		if view.Schedule.Memo != "" {
			event.SetDescription(view.Schedule.Memo)
		}
		if allDay {
			event.SetAllDayStartAt(start)
			event.SetAllDayEndAt(start.AddDate(0, 0, 1))
		} else {
			event.SetStartAt(start)
			event.SetEndAt(start.Add(time.Hour))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("%s.ics", sanitizeFilename(view.Schedule.ScheduleName))
	return buf, filename, nil
}

// candidateDateLayouts 候补日程文本可识别的日期格式
// 前半为完整日期，后半缺年份的取当前年
var candidateDateLayouts = []struct {
	layout  string
	allDay  bool
	hasYear bool
}{
	{"2006-01-02 15:04", false, true},
	{"2006/01/02 15:04", false, true},
	{"2006-01-02", true, true},
	{"2006/1/2", true, true},
	{"1/2 15:04", false, false},
	{"1/2", true, false},
}

// parseCandidateDate 尝试将候补日程名解析为日期
func parseCandidateDate(name string, now time.Time) (time.Time, bool, bool) {
	trimmed := strings.TrimSpace(name)
	for _, l := range candidateDateLayouts {
		t, err := time.ParseInLocation(l.layout, trimmed, time.Local)
		if err != nil {
			continue
		}
		if !l.hasYear {
			t = t.AddDate(now.Year(), 0, 0)
		}
		return t, l.allDay, true
	}
	return time.Time{}, false, false
}

// sanitizeFilename 去掉文件名中不安全的分隔符
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "\"", "_")
	return replacer.Replace(name)
}
