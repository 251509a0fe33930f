package services

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/pkg/notify"
)

// fakeStore is an in-memory implementation of every store interface
type fakeStore struct {
	mu          sync.Mutex
	events      map[string]*models.Event
	signups     map[string][]models.EventSignup
	staff       map[string]*models.StaffMember
	levels      []models.Level
	adjustments []models.PointAdjustment
	audits      []models.AuditLog
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:  make(map[string]*models.Event),
		signups: make(map[string][]models.EventSignup),
		staff:   make(map[string]*models.StaffMember),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// EventStore

func (f *fakeStore) Create(event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == "" {
		event.ID = f.id("evt")
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeStore) GetByID(eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (f *fakeStore) List() ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListByStatus(status models.EventStatus) ([]models.Event, error) {
	all, _ := f.List()
	out := make([]models.Event, 0, len(all))
	for _, e := range all {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateStatus(eventID string, status models.EventStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return sql.ErrNoRows
	}
	event.Status = status
	return nil
}

func (f *fakeStore) Delete(eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.events, eventID)
	delete(f.signups, eventID)
	return nil
}

func (f *fakeStore) AddSignup(eventID, staffID string, signedUpAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signups[eventID] {
		if s.StaffID == staffID {
			return false, nil
		}
	}
	f.signups[eventID] = append(f.signups[eventID], models.EventSignup{
		EventID:    eventID,
		StaffID:    staffID,
		SignedUpAt: signedUpAt,
	})
	return true, nil
}

func (f *fakeStore) RemoveSignup(eventID, staffID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signups := f.signups[eventID]
	for i, s := range signups {
		if s.StaffID == staffID {
			f.signups[eventID] = append(signups[:i], signups[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListSignups(eventID string) ([]models.EventSignup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.EventSignup(nil), f.signups[eventID]...), nil
}

func (f *fakeStore) MarkAwarded(eventID, staffID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signups := f.signups[eventID]
	for i, s := range signups {
		if s.StaffID == staffID && !s.PointsAwarded {
			signups[i].Confirmed = true
			signups[i].PointsAwarded = true
			return true, nil
		}
	}
	return false, nil
}

// StaffStore

func (f *fakeStore) CreateStaff(member *models.StaffMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member.ID == "" {
		member.ID = f.id("staff")
	}
	if len(member.Roles) == 0 {
		member.Roles = []string{models.RoleStaff}
	}
	copied := *member
	f.staff[member.ID] = &copied
	return nil
}

func (f *fakeStore) GetStaffByID(staffID string) (*models.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.staff[staffID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

func (f *fakeStore) GetByEmail(email string) (*models.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range f.staff {
		if member.Email == email {
			copied := *member
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) ListStaff() ([]models.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StaffMember, 0, len(f.staff))
	for _, member := range f.staff {
		out = append(out, *member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListActive() ([]models.StaffMember, error) {
	all, _ := f.ListStaff()
	out := make([]models.StaffMember, 0, len(all))
	for _, member := range all {
		if member.Status == models.StaffStatusActive {
			out = append(out, member)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByIDs(staffIDs []string) ([]models.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StaffMember, 0, len(staffIDs))
	for _, id := range staffIDs {
		if member, ok := f.staff[id]; ok {
			out = append(out, *member)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStaff(member *models.StaffMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.staff[member.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *member
	f.staff[member.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateStaffStatus(staffID string, status models.StaffStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.staff[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	member.Status = status
	return nil
}

func (f *fakeStore) UpdateStanding(staffID string, points int, levelName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.staff[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	member.Points = points
	member.LevelName = levelName
	return nil
}

func (f *fakeStore) CountByLevelName(levelName string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, member := range f.staff {
		if member.LevelName == levelName {
			count++
		}
	}
	return count, nil
}

// LevelStore

func (f *fakeStore) ListLevels() ([]models.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Level(nil), f.levels...)
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeStore) GetLevelByID(levelID string) (*models.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.levels {
		if l.ID == levelID {
			copied := l
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetLevelByName(name string) (*models.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.levels {
		if l.Name == name {
			copied := l
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) CreateLevel(level *models.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if level.ID == "" {
		level.ID = f.id("lvl")
	}
	f.levels = append(f.levels, *level)
	return nil
}

func (f *fakeStore) UpdateLevel(level *models.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.levels {
		if l.ID == level.ID {
			f.levels[i].Name = level.Name
			f.levels[i].MinPoints = level.MinPoints
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) DeleteLevel(levelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.levels {
		if l.ID == levelID {
			f.levels = append(f.levels[:i], f.levels[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) CountEventReferences(levelID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.events {
		if e.RequiredLevelID == levelID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Reorder(orderedIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for rank, id := range orderedIDs {
		for i, l := range f.levels {
			if l.ID == id {
				f.levels[i].Rank = rank
			}
		}
	}
	return nil
}

// AdjustmentStore

func (f *fakeStore) Append(adj *models.PointAdjustment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if adj.ID == "" {
		adj.ID = f.id("adj")
	}
	adj.CreatedAt = time.Now()
	f.adjustments = append(f.adjustments, *adj)
	return nil
}

func (f *fakeStore) ListByStaff(staffID string) ([]models.PointAdjustment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PointAdjustment, 0)
	for _, adj := range f.adjustments {
		if adj.StaffID == staffID {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (f *fakeStore) SumForStaff(staffID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, adj := range f.adjustments {
		if adj.StaffID == staffID {
			total += adj.Delta
		}
	}
	return total, nil
}

// AuditStore

func (f *fakeStore) Insert(entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.audits) + 1)
	entry.CreatedAt = time.Now()
	f.audits = append(f.audits, *entry)
	return nil
}

func (f *fakeStore) ListRecent(limit int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.AuditLog(nil), f.audits...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Adapter views so one fakeStore can satisfy interfaces with clashing
// method names.

type fakeEventStore struct{ *fakeStore }

type fakeStaffStore struct{ *fakeStore }

func (f fakeStaffStore) Create(member *models.StaffMember) error { return f.CreateStaff(member) }
func (f fakeStaffStore) GetByID(staffID string) (*models.StaffMember, error) {
	return f.GetStaffByID(staffID)
}
func (f fakeStaffStore) List() ([]models.StaffMember, error) { return f.ListStaff() }
func (f fakeStaffStore) Update(member *models.StaffMember) error {
	return f.UpdateStaff(member)
}
func (f fakeStaffStore) UpdateStatus(staffID string, status models.StaffStatus) error {
	return f.UpdateStaffStatus(staffID, status)
}

type fakeLevelStore struct{ *fakeStore }

func (f fakeLevelStore) List() ([]models.Level, error) { return f.ListLevels() }
func (f fakeLevelStore) GetByID(levelID string) (*models.Level, error) {
	return f.GetLevelByID(levelID)
}
func (f fakeLevelStore) GetByName(name string) (*models.Level, error) {
	return f.GetLevelByName(name)
}
func (f fakeLevelStore) Create(level *models.Level) error { return f.CreateLevel(level) }
func (f fakeLevelStore) Update(level *models.Level) error { return f.UpdateLevel(level) }
func (f fakeLevelStore) Delete(levelID string) error      { return f.DeleteLevel(levelID) }

// recordingNotifier captures every notification for assertions
type recordingNotifier struct {
	mu         sync.Mutex
	opened     []string
	cancelled  []string
	reinstated []string
	selected   []string
	rejected   []string
	awarded    map[string]int
	levelUps   map[string]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		awarded:  make(map[string]int),
		levelUps: make(map[string]string),
	}
}

func (n *recordingNotifier) EventOpened(event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, event.ID)
}

func (n *recordingNotifier) EventCancelled(event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, event.ID)
}

func (n *recordingNotifier) EventReinstated(event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reinstated = append(n.reinstated, event.ID)
}

func (n *recordingNotifier) SelectionResult(event models.Event, selected, rejected []models.StaffMember) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range selected {
		n.selected = append(n.selected, m.ID)
	}
	for _, m := range rejected {
		n.rejected = append(n.rejected, m.ID)
	}
}

func (n *recordingNotifier) PointsAwarded(staff models.StaffMember, delta, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.awarded[staff.ID] += delta
}

func (n *recordingNotifier) LevelUp(staff models.StaffMember, levelName string, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levelUps[staff.ID] = levelName
}

// fakeDispatcher records sends for NotificationService tests
type fakeDispatcher struct {
	mu    sync.Mutex
	sends []fakeSend
	fail  bool
}

type fakeSend struct {
	recipient string
	kind      notify.TemplateKind
}

func (d *fakeDispatcher) Send(recipient string, kind notify.TemplateKind, payload map[string]interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return fmt.Errorf("delivery refused")
	}
	d.sends = append(d.sends, fakeSend{recipient: recipient, kind: kind})
	return nil
}

func (d *fakeDispatcher) Name() string { return "Fake Gateway" }

// testEnv bundles a fully wired service set over one fakeStore
type testEnv struct {
	store    *fakeStore
	notifier *recordingNotifier
	levels   *LevelService
	points   *PointsService
	events   *EventService
	staffSvc *StaffService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	notifier := newRecordingNotifier()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	eventStore := fakeEventStore{store}
	staffStore := fakeStaffStore{store}
	levelStore := fakeLevelStore{store}

	levels := NewLevelService(levelStore, staffStore)
	points := NewPointsService(staffStore, eventStore, store, levels, notifier, logger)
	events := NewEventService(eventStore, staffStore, levelStore, points, levels, notifier, logger)

	return &testEnv{
		store:    store,
		notifier: notifier,
		levels:   levels,
		points:   points,
		events:   events,
		staffSvc: NewStaffService(staffStore),
	}
}

// seedLadder installs the Gold/Silver/Bronze ladder used across the tests
func (e *testEnv) seedLadder() {
	e.store.levels = []models.Level{
		{ID: "lvl-gold", Name: "Gold", MinPoints: 1000, Rank: 0},
		{ID: "lvl-silver", Name: "Silver", MinPoints: 500, Rank: 1},
		{ID: "lvl-bronze", Name: "Bronze", MinPoints: 0, Rank: 2},
	}
}

// seedStaff creates an active member at the given balance, ledger included
func (e *testEnv) seedStaff(id, levelName string, points int) *models.StaffMember {
	member := &models.StaffMember{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Status:    models.StaffStatusActive,
		Roles:     []string{models.RoleStaff},
		Points:    points,
		LevelName: levelName,
	}
	_ = e.store.CreateStaff(member)
	if points != 0 {
		_ = e.store.Append(&models.PointAdjustment{
			StaffID: id,
			Delta:   points,
			Reason:  "seed",
			ActorID: "admin-1",
		})
	}
	return member
}

// seedOpenEvent creates an open event a week out requiring Bronze
func (e *testEnv) seedOpenEvent(id string, points int) *models.Event {
	event := &models.Event{
		ID:              id,
		Name:            "Event " + id,
		EventDate:       time.Now().AddDate(0, 0, 7),
		StartTime:       "14:00",
		Location:        "Main Hall",
		Points:          points,
		RequiredLevelID: "lvl-bronze",
		Status:          models.EventStatusOpen,
	}
	_ = e.store.Create(event)
	return event
}
