package reminder

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no alarm matches a delete or stop request.
	ErrNotFound = errors.New("alarm not found")
	// ErrNotRinging is returned when stopping an alarm that is not ringing.
	ErrNotRinging = errors.New("alarm is not ringing")
	// ErrInvalidTime is returned when creating an alarm with an out-of-range clock.
	ErrInvalidTime = errors.New("invalid alarm time")
)

// StorageKey is the blob key the alarm collection is persisted under.
const StorageKey = "alarms"

// AlarmStore defines the persistence interface for the alarm collection.
type AlarmStore interface {
	Load(ctx context.Context) ([]*Alarm, error)
	Save(ctx context.Context, alarms []*Alarm) error
}

// BlobStore is the key-value storage an AlarmStore can sit on.
// Get returns nil, nil for a missing key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// BlobAlarmStore persists alarms as one JSON array under StorageKey.
type BlobAlarmStore struct {
	blobs BlobStore
}

// NewBlobAlarmStore creates an alarm store backed by blobs.
func NewBlobAlarmStore(blobs BlobStore) *BlobAlarmStore {
	return &BlobAlarmStore{blobs: blobs}
}

// Load reads the alarm collection. A missing blob is an empty collection.
func (s *BlobAlarmStore) Load(ctx context.Context) ([]*Alarm, error) {
	data, err := s.blobs.Get(ctx, StorageKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read alarms")
	}
	if len(data) == 0 {
		return []*Alarm{}, nil
	}

	var alarms []*Alarm
	if err := json.Unmarshal(data, &alarms); err != nil {
		return nil, errors.Wrap(err, "failed to decode alarms")
	}
	if alarms == nil {
		alarms = []*Alarm{}
	}
	return alarms, nil
}

// Save writes the alarm collection.
func (s *BlobAlarmStore) Save(ctx context.Context, alarms []*Alarm) error {
	if alarms == nil {
		alarms = []*Alarm{}
	}
	data, err := json.Marshal(alarms)
	if err != nil {
		return errors.Wrap(err, "failed to encode alarms")
	}
	if err := s.blobs.Set(ctx, StorageKey, data); err != nil {
		return errors.Wrap(err, "failed to write alarms")
	}
	return nil
}

// Service owns the alarm collection. Every mutation and the persist that
// follows it run under one lock.
type Service struct {
	store  AlarmStore
	alarms []*Alarm
	lastID int64
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new alarm service with an empty collection.
// Call Load to restore persisted alarms.
func NewService(store AlarmStore) *Service {
	return &Service{
		store:  store,
		alarms: []*Alarm{},
		now:    time.Now,
		logger: slog.Default(),
	}
}

// SetLogger sets a custom logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetClock replaces the clock used for IDs and remaining-time messages.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load replaces the collection with the persisted one.
func (s *Service) Load(ctx context.Context) error {
	alarms, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alarms = alarms
	for _, a := range alarms {
		if a.ID > s.lastID {
			s.lastID = a.ID
		}
	}
	s.logger.Info("alarms loaded", "count", len(alarms))
	return nil
}

// Create appends a new alarm and returns it with the confirmation message.
func (s *Service) Create(ctx context.Context, hour, minute int, description string, date *time.Time) (*Alarm, string, error) {
	if !ValidClock(hour, minute) {
		return nil, "", errors.Wrapf(ErrInvalidTime, "%d:%d", hour, minute)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultDescription
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	alarm := &Alarm{
		ID:          s.nextID(now),
		Time:        FormatClock(hour, minute),
		Description: description,
	}
	if date != nil {
		d := date.Format(DateLayout)
		alarm.Date = &d
	}

	s.alarms = append(s.alarms, alarm)
	s.persist(ctx)

	s.logger.Info("alarm created", "id", alarm.ID, "time", alarm.Time, "dated", date != nil)
	message := CreatedMessage(alarm, date, TimeUntil(now, hour, minute, date))
	return alarm.Clone(), message, nil
}

// Delete removes the first alarm set for clock (HH:MM).
func (s *Service) Delete(ctx context.Context, clock string) (*Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alarms {
		if a.Time == clock {
			return s.removeAt(ctx, i), nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "no alarm at %s", clock)
}

// DeleteByID removes the alarm with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.Wrapf(ErrNotFound, "no alarm with id %d", id)
	}
	return s.removeAt(ctx, i), nil
}

// DeleteAll removes every alarm and returns how many were removed.
func (s *Service) DeleteAll(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.alarms)
	s.alarms = []*Alarm{}
	s.persist(ctx)

	s.logger.Info("all alarms removed", "count", n)
	return n
}

// List returns copies of all alarms in insertion order.
func (s *Service) List() []*Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.alarms, func(*Alarm) bool { return true })
}

// Ringing returns copies of the alarms that are currently ringing.
func (s *Service) Ringing() []*Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.alarms, func(a *Alarm) bool { return a.IsRinging })
}

// StopRinging silences a ringing alarm and removes it.
func (s *Service) StopRinging(ctx context.Context, id int64) (*Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.Wrapf(ErrNotFound, "no alarm with id %d", id)
	}
	if !s.alarms[i].IsRinging {
		return nil, errors.Wrapf(ErrNotRinging, "alarm %d", id)
	}

	alarm := s.removeAt(ctx, i)
	alarm.IsRinging = false
	return alarm, nil
}

// Tick marks every due alarm as ringing and returns copies of them.
// Calling it again within the same minute fires nothing new.
func (s *Service) Tick(ctx context.Context, now time.Time) []*Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []*Alarm
	for _, a := range s.alarms {
		if a.Due(now) {
			a.IsRinging = true
			fired = append(fired, a.Clone())
		}
	}

	if len(fired) > 0 {
		s.persist(ctx)
		s.logger.Info("alarms fired", "count", len(fired), "time", now.Format(ClockLayout))
	}
	return fired
}

// nextID returns a millisecond timestamp ID, bumped past the last issued one.
// Caller holds s.mu.
func (s *Service) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Caller holds s.mu.
func (s *Service) indexOf(id int64) int {
	for i, a := range s.alarms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// removeAt removes the alarm at index i, persists, and returns a copy.
// Caller holds s.mu.
func (s *Service) removeAt(ctx context.Context, i int) *Alarm {
	alarm := s.alarms[i]
	s.alarms = append(s.alarms[:i:i], s.alarms[i+1:]...)
	s.persist(ctx)

	s.logger.Info("alarm removed", "id", alarm.ID, "time", alarm.Time)
	return alarm.Clone()
}

// persist saves the collection. Failures are logged; the in-memory
// collection stays authoritative. Caller holds s.mu.
func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.alarms); err != nil {
		s.logger.Error("failed to persist alarms", "error", err, "count", len(s.alarms))
	}
}

func cloneAll(alarms []*Alarm, keep func(*Alarm) bool) []*Alarm {
	out := make([]*Alarm, 0, len(alarms))
	for _, a := range alarms {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}
