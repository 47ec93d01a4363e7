package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportService renders printable documents: the daily log, a child's
// monthly attendance sheet, and a child's service record.
type ExportService struct {
	records     recordRepository
	children    recordChildRepository
	attendances attendanceRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(records recordRepository, children recordChildRepository, attendances attendanceRepository, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		records:     records,
		children:    children,
		attendances: attendances,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// DailyLog renders every record the facility saved for one date.
func (s *ExportService) DailyLog(ctx context.Context, actor models.Actor, dateStr string, format ExportFormat) (*ExportFile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	date, err := parseExportDate(dateStr)
	if err != nil {
		return nil, err
	}
	rows, err := s.records.List(ctx, models.RecordFilter{FacilityID: actor.FacilityID, Date: &date})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}

	data := export.Dataset{
		Headers: []string{"児童名", "気分", "活動内容", "記録フレーズ", "来所時刻", "帰宅時刻", "送迎", "メモ"},
	}
	for _, rec := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"児童名":    rec.ChildName,
			"気分":     moodLabel(rec.Mood),
			"活動内容":   strings.Join(rec.Activities, "、"),
			"記録フレーズ": strings.Join(rec.Phrases, "。"),
			"来所時刻":   deref(rec.ArrivalTime),
			"帰宅時刻":   deref(rec.DepartureTime),
			"送迎":     deref(rec.PickupMethod),
			"メモ":     deref(rec.Memo),
		})
	}

	name := fmt.Sprintf("daily-log-%s", date.Format("2006-01-02"))
	title := fmt.Sprintf("支援記録一覧 %s", date.Format("2006-01-02"))
	return s.render(data, format, name, title)
}

// MonthlyAttendance renders one child's present/absent sheet for a month.
func (s *ExportService) MonthlyAttendance(ctx context.Context, actor models.Actor, childID, month string, format ExportFormat) (*ExportFile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	child, err := s.children.FindByID(ctx, actor.FacilityID, childID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
	}
	from, to, err := monthBounds(month)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendances.ListByChildRange(ctx, actor.FacilityID, childID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}

	byDate := make(map[string]bool, len(rows))
	for _, att := range rows {
		byDate[att.Date.Format("2006-01-02")] = att.IsPresent
	}

	data := export.Dataset{Headers: []string{"日付", "曜日", "出欠"}}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		status := ""
		if present, ok := byDate[d.Format("2006-01-02")]; ok {
			status = "欠席"
			if present {
				status = "出席"
			}
		}
		data.Rows = append(data.Rows, map[string]string{
			"日付": d.Format("2006-01-02"),
			"曜日": weekdayLabel(d.Weekday()),
			"出欠": status,
		})
	}

	name := fmt.Sprintf("attendance-%s-%s", child.Name, month)
	title := fmt.Sprintf("出欠表 %s %s", child.Name, month)
	return s.render(data, format, name, title)
}

// ServiceRecord renders one child's record for one date as a PDF suitable
// for handing to parents.
func (s *ExportService) ServiceRecord(ctx context.Context, actor models.Actor, childID, dateStr string) (*ExportFile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	child, err := s.children.FindByID(ctx, actor.FacilityID, childID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
	}
	date, err := parseExportDate(dateStr)
	if err != nil {
		return nil, err
	}
	record, err := s.records.FindByChildAndDate(ctx, actor.FacilityID, childID, date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}

	data := export.Dataset{
		Headers: []string{"項目", "内容"},
		Rows: []map[string]string{
			{"項目": "児童名", "内容": child.Name},
			{"項目": "日付", "内容": date.Format("2006-01-02")},
			{"項目": "気分", "内容": moodLabel(record.Mood)},
			{"項目": "活動内容", "内容": strings.Join(record.Activities, "、")},
			{"項目": "記録フレーズ", "内容": strings.Join(record.Phrases, "。")},
			{"項目": "来所時刻", "内容": deref(record.ArrivalTime)},
			{"項目": "帰宅時刻", "内容": deref(record.DepartureTime)},
			{"項目": "送迎", "内容": deref(record.PickupMethod)},
			{"項目": "メモ", "内容": deref(record.Memo)},
		},
	}

	name := fmt.Sprintf("service-record-%s-%s", child.Name, date.Format("2006-01-02"))
	title := fmt.Sprintf("支援記録 %s", child.Name)
	return s.render(data, FormatPDF, name, title)
}

func (s *ExportService) render(data export.Dataset, format ExportFormat, name, title string) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, Filename: name + ".csv", ContentType: "text/csv; charset=utf-8"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, Filename: name + ".pdf", ContentType: "application/pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}
}

func parseExportDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format")
	}
	return date, nil
}

func moodLabel(m *models.Mood) string {
	if m == nil {
		return models.Mood("").Label()
	}
	return m.Label()
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func weekdayLabel(d time.Weekday) string {
	labels := [...]string{"日", "月", "火", "水", "木", "金", "土"}
	return labels[d]
}
