package services

import (
	"context"
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
)

// DashboardView is everything a dashboard renders for one patient, computed
// in one pass from the authoritative record set.
type DashboardView struct {
	Patient  RosterEntry      `json:"patient"`
	AsOf     string           `json:"as_of"`
	Summary  AdherenceSummary `json:"summary"`
	Calendar CalendarMonth    `json:"calendar"`
}

type SummaryMetrics interface {
	SummaryComputed(ctx context.Context, duration time.Duration)
}

type SummaryService struct {
	intakes  *IntakeService
	users    LinkUserRepository
	links    LinkChecker
	metrics  SummaryMetrics
	location *time.Location
}

func NewSummaryService(intakes *IntakeService, users LinkUserRepository, links LinkChecker, metrics SummaryMetrics, location *time.Location) *SummaryService {
	if location == nil {
		location = time.UTC
	}
	if metrics == nil {
		metrics = noopSummaryMetrics{}
	}
	return &SummaryService{
		intakes:  intakes,
		users:    users,
		links:    links,
		metrics:  metrics,
		location: location,
	}
}

func (service *SummaryService) Location() *time.Location {
	return service.location
}

// BuildDashboard authorises viewer, then recomputes the patient's summary
// and current-month calendar from a fresh fetch.
func (service *SummaryService) BuildDashboard(ctx context.Context, viewer *models.User, patientID uint, now time.Time) (DashboardView, error) {
	return service.BuildDashboardForMonth(ctx, viewer, patientID, now, now)
}

func (service *SummaryService) BuildDashboardForMonth(ctx context.Context, viewer *models.User, patientID uint, month time.Time, now time.Time) (DashboardView, error) {
	if err := AuthorizePatientView(viewer, patientID, service.links); err != nil {
		return DashboardView{}, err
	}

	records, err := service.intakes.FetchRecords(patientID)
	if err != nil {
		return DashboardView{}, err
	}

	started := time.Now()
	view := DashboardView{
		Patient:  service.patientRef(viewer, patientID),
		AsOf:     DateKey(now, service.location),
		Summary:  ComputeSummary(records, now, service.location),
		Calendar: BuildCalendarMonth(month, records, now, service.location),
	}
	service.metrics.SummaryComputed(ctx, time.Since(started))
	return view, nil
}

func (service *SummaryService) BuildCalendar(viewer *models.User, patientID uint, month time.Time, now time.Time) (CalendarMonth, error) {
	if err := AuthorizePatientView(viewer, patientID, service.links); err != nil {
		return CalendarMonth{}, err
	}
	records, err := service.intakes.FetchRecords(patientID)
	if err != nil {
		return CalendarMonth{}, err
	}
	return BuildCalendarMonth(month, records, now, service.location), nil
}

func (service *SummaryService) patientRef(viewer *models.User, patientID uint) RosterEntry {
	if viewer != nil && viewer.ID == patientID {
		name := ProfileDisplayName(*viewer)
		return RosterEntry{PatientID: patientID, DisplayName: &name}
	}
	profiles, err := service.users.ListByIDs([]uint{patientID})
	if err != nil {
		return RosterEntry{PatientID: patientID}
	}
	link := models.CaretakerLink{PatientID: patientID}
	return ComputeLinkedPatientRoster([]models.CaretakerLink{link}, profiles)[0]
}

type noopSummaryMetrics struct{}

func (noopSummaryMetrics) SummaryComputed(context.Context, time.Duration) {}
