package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/repository"
	"graficaos.service/internal/report"
)

// Requester is the authenticated caller of a report.
type Requester struct {
	UserID string
	Role   model.Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == model.RoleAdmin
}

// ResolveScope picks whose records a report covers. Admins may ask for one
// user or everyone (empty); employees always get their own records.
func ResolveScope(req Requester, requestedUserID string) string {
	if req.IsAdmin() {
		return requestedUserID
	}
	return req.UserID
}

// MaxRangeDays bounds a report range: one leap year.
const MaxRangeDays = 366

// ParseRange parses an inclusive YYYY-MM-DD range of at most MaxRangeDays.
// An end before the start is an empty range, not an error.
func ParseRange(start, end string) (model.DateRange, error) {
	s, err := model.ParseDate(start)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: startDate %q", ErrInvalidDate, start)
	}
	e, err := model.ParseDate(end)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: endDate %q", ErrInvalidDate, end)
	}
	rng := model.DateRange{Start: s, End: e}
	if n := rng.Len(); n > MaxRangeDays {
		return model.DateRange{}, fmt.Errorf("%w: range of %d days exceeds %d", ErrInvalidDate, n, MaxRangeDays)
	}
	return rng, nil
}

// ReportService recomputes every report from the persisted records.
type ReportService struct {
	repo   repository.PunchRepository
	users  repository.UserRepository
	clock  *CivilClock
	onTime model.TimeOfDay
}

func NewReportService(repo repository.PunchRepository, users repository.UserRepository, clock *CivilClock, onTime model.TimeOfDay) *ReportService {
	return &ReportService{repo: repo, users: users, clock: clock, onTime: onTime}
}

// Records returns the records in range with their worked hours.
func (s *ReportService) Records(ctx context.Context, filter model.RecordFilter) ([]model.ReportRecord, error) {
	records, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]model.ReportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, model.ReportRecord{PunchRecord: r, HorasTrabalhadas: WorkedHoursLabel(r)})
	}
	return out, nil
}

// Metrics computes the snapshot for the filter, using now for open journeys.
func (s *ReportService) Metrics(ctx context.Context, filter model.RecordFilter) (model.MetricsSnapshot, error) {
	records, err := s.load(ctx, filter)
	if err != nil {
		return model.MetricsSnapshot{}, err
	}

	return ComputeMetrics(records, filter.Range, MetricsOptions{
		OnTime:   s.onTime,
		Now:      s.clock.Now(),
		Location: s.clock.Location(),
	}), nil
}

// ExportRows shapes the filter's records for the document renderers.
func (s *ReportService) ExportRows(ctx context.Context, filter model.RecordFilter) ([]model.ExportRow, error) {
	records, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToExportRows(records, s.clock.Location()), nil
}

// Export renders the filter's rows as a csv, xlsx or pdf document.
func (s *ReportService) Export(ctx context.Context, filter model.RecordFilter, format string) (report.Document, error) {
	renderer, ok := report.ForFormat(format)
	if !ok {
		return report.Document{}, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	rows, err := s.ExportRows(ctx, filter)
	if err != nil {
		return report.Document{}, err
	}

	meta := report.Meta{
		Title:       "Relatório de Ponto",
		Subject:     s.subject(ctx, filter.UserID),
		Range:       filter.Range,
		GeneratedAt: s.clock.Now(),
	}
	doc, err := report.Build(renderer, rows, meta)
	if err != nil {
		return report.Document{}, fmt.Errorf("failed to render %s report: %w", format, err)
	}
	log.Ctx(ctx).Info().Str("format", format).Int("rows", len(rows)).Str("range", filter.Range.String()).Msg("Report exported")
	return doc, nil
}

func (s *ReportService) load(ctx context.Context, filter model.RecordFilter) ([]model.PunchRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistenceError("list punch records", err)
	}
	return records, nil
}

// subject names whose records a report holds; lookup failures fall back to the id.
func (s *ReportService) subject(ctx context.Context, userID string) string {
	if userID == "" {
		return "Todos os funcionários"
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Could not load report subject")
		return userID
	}
	return u.Name
}
