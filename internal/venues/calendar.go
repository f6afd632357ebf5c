package venues

import (
	"context"
	"sort"
	"time"

	"venuely/internal/shared/apperr"
	"venuely/pkg/logger"

	"github.com/google/uuid"
)

// AvailabilityMode says how a venue's calendar interprets unknown dates.
type AvailabilityMode int

const (
	// OpenMode: every date is bookable unless booked or blocked.
	OpenMode AvailabilityMode = iota
	// AllowListMode: only explicitly listed dates are bookable, and booked
	// and blocked entries still override the list.
	AllowListMode
)

func (m AvailabilityMode) String() string {
	if m == AllowListMode {
		return "allow_list"
	}
	return "open"
}

// CalendarSnapshot is one venue's full calendar state loaded in a single
// read. Mode is derived exactly once from the snapshot; callers never
// re-inspect the allow-list to decide which semantics apply.
type CalendarSnapshot struct {
	VenueID uuid.UUID
	Booked  []BookedDate
	Blocked []BlockedDate
	Allowed []AvailableDate
}

func (s *CalendarSnapshot) Mode() AvailabilityMode {
	if len(s.Allowed) > 0 {
		return AllowListMode
	}
	return OpenMode
}

func (s *CalendarSnapshot) isBooked(day time.Time) bool {
	for _, entry := range s.Booked {
		if SameDay(entry.Date, day) {
			return true
		}
	}
	return false
}

func (s *CalendarSnapshot) isBlocked(day time.Time) bool {
	for _, entry := range s.Blocked {
		if SameDay(entry.Date, day) {
			return true
		}
	}
	return false
}

func (s *CalendarSnapshot) isListed(day time.Time) bool {
	for _, entry := range s.Allowed {
		if SameDay(entry.Date, day) {
			return true
		}
	}
	return false
}

// IsAvailable evaluates one day against the snapshot. Precedence is fixed:
// booked and blocked always lose, then the mode decides the default.
func (s *CalendarSnapshot) IsAvailable(date time.Time) bool {
	day := DayUTC(date)
	if s.isBooked(day) || s.isBlocked(day) {
		return false
	}
	if s.Mode() == AllowListMode {
		return s.isListed(day)
	}
	return true
}

// DayStatus is the per-day classification returned by availability listings.
type DayStatus string

const (
	DayAvailable   DayStatus = "AVAILABLE"
	DayBooked      DayStatus = "BOOKED"
	DayBlocked     DayStatus = "BLOCKED"
	DayUnavailable DayStatus = "UNAVAILABLE"
)

type CalendarDay struct {
	Date   time.Time `json:"date"`
	Status DayStatus `json:"status"`
	Slots  []string  `json:"slots,omitempty"`
}

type CalendarService interface {
	IsAvailable(ctx context.Context, venueID uuid.UUID, date time.Time) (bool, error)
	Reserve(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID uuid.UUID) error
	Release(ctx context.Context, venueID, bookingID uuid.UUID) error
	Block(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error)
	Unblock(ctx context.Context, venueID uuid.UUID, dates []time.Time) error
	MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error)
	SetAvailableDates(ctx context.Context, venueID uuid.UUID, dates []AvailableDateInput) error
	ListAvailability(ctx context.Context, venueID uuid.UUID, from, to time.Time) ([]CalendarDay, AvailabilityMode, error)
}

type AvailableDateInput struct {
	Date  time.Time
	Slots []string
}

type calendarService struct {
	repo   Repository
	logger *logger.Logger
}

func NewCalendarService(repo Repository, log *logger.Logger) CalendarService {
	return &calendarService{repo: repo, logger: log}
}

func (s *calendarService) IsAvailable(ctx context.Context, venueID uuid.UUID, date time.Time) (bool, error) {
	snapshot, err := s.repo.GetCalendar(ctx, venueID)
	if err != nil {
		return false, err
	}
	return snapshot.IsAvailable(date), nil
}

func (s *calendarService) Reserve(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID uuid.UUID) error {
	if DayUTC(date).Before(DayUTC(time.Now())) {
		return apperr.Validation("cannot reserve a past date")
	}

	if err := s.repo.ReserveDate(ctx, venueID, date, &bookingID); err != nil {
		return err
	}

	s.logger.LogCalendarMutation(ctx, venueID.String(), "reserve", 1)
	return nil
}

func (s *calendarService) Release(ctx context.Context, venueID, bookingID uuid.UUID) error {
	if err := s.repo.ReleaseByBooking(ctx, venueID, bookingID); err != nil {
		return err
	}
	s.logger.LogCalendarMutation(ctx, venueID.String(), "release", 1)
	return nil
}

func (s *calendarService) Block(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error) {
	if len(dates) == 0 {
		return 0, apperr.Validation("at least one date is required")
	}

	inserted, err := s.repo.InsertBlockedDates(ctx, venueID, dates, reason, blockedBy)
	if err != nil {
		return 0, err
	}

	s.logger.LogCalendarMutation(ctx, venueID.String(), "block", inserted)
	return inserted, nil
}

func (s *calendarService) Unblock(ctx context.Context, venueID uuid.UUID, dates []time.Time) error {
	if len(dates) == 0 {
		return apperr.Validation("at least one date is required")
	}

	if err := s.repo.DeleteBlockedDates(ctx, venueID, dates); err != nil {
		return err
	}

	s.logger.LogCalendarMutation(ctx, venueID.String(), "unblock", len(dates))
	return nil
}

func (s *calendarService) MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error) {
	if len(dates) == 0 {
		return 0, apperr.Validation("at least one date is required")
	}

	inserted, err := s.repo.MarkManuallyBooked(ctx, venueID, dates)
	if err != nil {
		return 0, err
	}

	s.logger.LogCalendarMutation(ctx, venueID.String(), "manual_book", inserted)
	return inserted, nil
}

func (s *calendarService) SetAvailableDates(ctx context.Context, venueID uuid.UUID, dates []AvailableDateInput) error {
	entries := make([]AvailableDate, 0, len(dates))
	seen := make(map[time.Time]bool, len(dates))
	for _, input := range dates {
		day := DayUTC(input.Date)
		if seen[day] {
			continue
		}
		seen[day] = true
		entries = append(entries, AvailableDate{
			Date:  day,
			Slots: joinSlots(input.Slots),
		})
	}

	if err := s.repo.ReplaceAvailableDates(ctx, venueID, entries); err != nil {
		return err
	}

	s.logger.LogCalendarMutation(ctx, venueID.String(), "set_available", len(entries))
	return nil
}

func (s *calendarService) ListAvailability(ctx context.Context, venueID uuid.UUID, from, to time.Time) ([]CalendarDay, AvailabilityMode, error) {
	// Default window: today through the next 90 days
	if from.IsZero() {
		from = time.Now()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 90)
	}
	from = DayUTC(from)
	to = DayUTC(to)
	if to.Before(from) {
		return nil, OpenMode, apperr.Validation("'to' date must not precede 'from' date")
	}

	snapshot, err := s.repo.GetCalendar(ctx, venueID)
	if err != nil {
		return nil, OpenMode, err
	}

	mode := snapshot.Mode()
	slotsByDay := make(map[time.Time][]string, len(snapshot.Allowed))
	for _, entry := range snapshot.Allowed {
		slotsByDay[DayUTC(entry.Date)] = entry.SlotList()
	}

	var days []CalendarDay
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		status := DayAvailable
		switch {
		case snapshot.isBooked(day):
			status = DayBooked
		case snapshot.isBlocked(day):
			status = DayBlocked
		case mode == AllowListMode && !snapshot.isListed(day):
			status = DayUnavailable
		}
		days = append(days, CalendarDay{
			Date:   day,
			Status: status,
			Slots:  slotsByDay[day],
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, mode, nil
}
