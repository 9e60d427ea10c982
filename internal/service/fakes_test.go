package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
	"github.com/sanjshine99/carepath/internal/repository"
)

// fakeRoutingClient is an in-memory stand-in for geo.RoutingClient that
// returns a fixed driving duration regardless of the points given, so tests
// can pin exact travel-time arithmetic instead of depending on haversine
// distance and an assumed speed.
type fakeRoutingClient struct {
	duration time.Duration
}

func (r fakeRoutingClient) DrivingDuration(_ context.Context, _, _ geo.Point) (time.Duration, error) {
	return r.duration, nil
}

// fakeCareGiverRepo is an in-memory stand-in for CareGiverRepository,
// satisfying every narrow repository interface the service package declares
// against it, giving every service a seam for fakes instead of a live DB.
type fakeCareGiverRepo struct {
	byID map[uuid.UUID]*model.CareGiver
}

func newFakeCareGiverRepo(givers ...*model.CareGiver) *fakeCareGiverRepo {
	repo := &fakeCareGiverRepo{byID: make(map[uuid.UUID]*model.CareGiver)}
	for _, cg := range givers {
		if cg.ID == uuid.Nil {
			cg.ID = uuid.New()
		}
		repo.byID[cg.ID] = cg
	}
	return repo
}

func (r *fakeCareGiverRepo) GetByID(_ context.Context, id uuid.UUID) (*model.CareGiver, error) {
	cg, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrCareGiverNotFound
	}
	return cg, nil
}

func (r *fakeCareGiverRepo) ListActive(_ context.Context) ([]model.CareGiver, error) {
	var ids []uuid.UUID
	for id, cg := range r.byID {
		if cg.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	out := make([]model.CareGiver, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

// fakeCareReceiverRepo is an in-memory stand-in for CareReceiverRepository.
type fakeCareReceiverRepo struct {
	byID map[uuid.UUID]*model.CareReceiver
}

func newFakeCareReceiverRepo(receivers ...*model.CareReceiver) *fakeCareReceiverRepo {
	repo := &fakeCareReceiverRepo{byID: make(map[uuid.UUID]*model.CareReceiver)}
	for _, r := range receivers {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		repo.byID[r.ID] = r
	}
	return repo
}

func (r *fakeCareReceiverRepo) GetByID(_ context.Context, id uuid.UUID) (*model.CareReceiver, error) {
	receiver, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrCareReceiverNotFound
	}
	return receiver, nil
}

func (r *fakeCareReceiverRepo) ListActive(_ context.Context) ([]model.CareReceiver, error) {
	var ids []uuid.UUID
	for id, receiver := range r.byID {
		if receiver.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	out := make([]model.CareReceiver, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

func (r *fakeCareReceiverRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.CareReceiver, error) {
	out := make([]model.CareReceiver, 0, len(ids))
	for _, id := range ids {
		if receiver, ok := r.byID[id]; ok {
			out = append(out, *receiver)
		}
	}
	return out, nil
}

// fakeAppointmentRepo is an in-memory stand-in for AppointmentRepository.
type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo(appointments ...*model.Appointment) *fakeAppointmentRepo {
	repo := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
	for _, apt := range appointments {
		if apt.ID == uuid.Nil {
			apt.ID = uuid.New()
		}
		repo.byID[apt.ID] = apt
	}
	return repo
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	cp := *apt
	r.byID[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.byID[apt.ID]; !ok {
		return errors.New("appointment not found")
	}
	cp := *apt
	r.byID[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) ExistsForVisit(_ context.Context, receiverID uuid.UUID, day model.TimeOnlyDate, visitNumber int) (bool, error) {
	for _, apt := range r.byID {
		if apt.CareReceiverID == receiverID && apt.Date.Equal(day) && apt.VisitNumber == visitNumber && apt.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ForCareGiverOnDay(_ context.Context, cgID uuid.UUID, day model.TimeOnlyDate) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, apt := range r.byID {
		if apt.Date.Equal(day) && apt.HasCareGiver(cgID) {
			out = append(out, *apt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) InWindowByStatuses(_ context.Context, start, end model.TimeOnlyDate, statuses []model.AppointmentStatus) ([]model.Appointment, error) {
	want := make(map[model.AppointmentStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []model.Appointment
	for _, apt := range r.byID {
		if (apt.Date.Equal(start) || apt.Date.After(start)) && (apt.Date.Equal(end) || apt.Date.Before(end)) && want[apt.Status] {
			out = append(out, *apt)
		}
	}
	return out, nil
}

// fakeAvailabilityRepo is an in-memory stand-in for AvailabilityRepository.
type fakeAvailabilityRepo struct {
	byCareGiver map[uuid.UUID][]model.AvailabilityVersion
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{byCareGiver: make(map[uuid.UUID][]model.AvailabilityVersion)}
}

func (r *fakeAvailabilityRepo) seed(v model.AvailabilityVersion) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.byCareGiver[v.CareGiverID] = append(r.byCareGiver[v.CareGiverID], v)
}

func (r *fakeAvailabilityRepo) CurrentFor(_ context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error) {
	var best *model.AvailabilityVersion
	for i, v := range r.byCareGiver[careGiverID] {
		if !v.IsActive || !v.CoversDate(atDate) {
			continue
		}
		if best == nil || v.EffectiveFrom.After(best.EffectiveFrom) {
			best = &r.byCareGiver[careGiverID][i]
		}
	}
	if best == nil {
		return nil, repository.ErrAvailabilityVersionNotFound
	}
	return best, nil
}

func (r *fakeAvailabilityRepo) At(_ context.Context, careGiverID uuid.UUID, atDate model.TimeOnlyDate) (*model.AvailabilityVersion, error) {
	var best *model.AvailabilityVersion
	for i, v := range r.byCareGiver[careGiverID] {
		if !v.CoversDate(atDate) {
			continue
		}
		if best == nil || v.EffectiveFrom.After(best.EffectiveFrom) {
			best = &r.byCareGiver[careGiverID][i]
		}
	}
	if best == nil {
		return nil, repository.ErrAvailabilityVersionNotFound
	}
	return best, nil
}

func (r *fakeAvailabilityRepo) History(_ context.Context, careGiverID uuid.UUID) ([]model.AvailabilityVersion, error) {
	return r.byCareGiver[careGiverID], nil
}

func (r *fakeAvailabilityRepo) CreateVersion(_ context.Context, next *model.AvailabilityVersion) error {
	maxVersion := 0
	for i, v := range r.byCareGiver[next.CareGiverID] {
		if v.Version > maxVersion {
			maxVersion = v.Version
		}
		if v.IsActive && v.EffectiveTo == nil {
			r.byCareGiver[next.CareGiverID][i].EffectiveTo = &next.EffectiveFrom
			r.byCareGiver[next.CareGiverID][i].IsActive = false
		}
	}
	next.Version = maxVersion + 1
	next.IsActive = true
	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	r.byCareGiver[next.CareGiverID] = append(r.byCareGiver[next.CareGiverID], *next)
	return nil
}

// fakeSettingsRepo is an in-memory stand-in for SystemSettingsRepository.
type fakeSettingsRepo struct {
	settings *model.SystemSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: model.DefaultSettings()}
}

func (r *fakeSettingsRepo) GetOrCreate(_ context.Context) (*model.SystemSettings, error) {
	cp := *r.settings
	return &cp, nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, settings *model.SystemSettings) error {
	r.settings = settings
	return nil
}
