package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"

	"github.com/google/uuid"
)

type AlarmStore struct {
	db *sql.DB
}

func NewAlarmStore(db *sql.DB) *AlarmStore {
	return &AlarmStore{db: db}
}

func (s *AlarmStore) Create(label string, at clock.TimeOfDay, days clock.WeekdaySet, filterActive, beep, speech, ringtone bool) (*model.Alarm, error) {
	id := uuid.NewString()

	_, err := s.db.Exec(
		`INSERT INTO alarms (id, label, hour, minute, enabled, days, filter_active, beep, speech, ringtone)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`,
		id, label, at.Hour, at.Minute, days.Mask(), boolInt(filterActive), boolInt(beep), boolInt(speech), boolInt(ringtone),
	)
	if err != nil {
		return nil, fmt.Errorf("insert alarm: %w", err)
	}

	return s.GetByID(id)
}

func (s *AlarmStore) GetByID(id string) (*model.Alarm, error) {
	row := s.db.QueryRow(
		`SELECT id, label, hour, minute, enabled, days, filter_active, beep, speech, ringtone, snoozed_until, created_at, updated_at
		 FROM alarms WHERE id = ?`,
		id,
	)

	a, err := scanAlarm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query alarm: %w", err)
	}
	return a, nil
}

func (s *AlarmStore) List() ([]model.Alarm, error) {
	rows, err := s.db.Query(
		`SELECT id, label, hour, minute, enabled, days, filter_active, beep, speech, ringtone, snoozed_until, created_at, updated_at
		 FROM alarms ORDER BY hour, minute, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}
	defer rows.Close()

	var alarms []model.Alarm
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alarm: %w", err)
		}
		alarms = append(alarms, *a)
	}
	return alarms, rows.Err()
}

func (s *AlarmStore) Update(a model.Alarm) error {
	res, err := s.db.Exec(
		`UPDATE alarms
		 SET label = ?, hour = ?, minute = ?, enabled = ?, days = ?, filter_active = ?,
		     beep = ?, speech = ?, ringtone = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.Label, a.Time.Hour, a.Time.Minute, boolInt(a.Enabled), a.Days.Mask(), boolInt(a.FilterActive),
		boolInt(a.Beep), boolInt(a.Speech), boolInt(a.Ringtone), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update alarm: %w", err)
	}
	return requireRow(res, "alarm", a.ID)
}

func (s *AlarmStore) SetEnabled(id string, enabled bool) error {
	res, err := s.db.Exec(
		`UPDATE alarms SET enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolInt(enabled), id,
	)
	if err != nil {
		return fmt.Errorf("set alarm enabled: %w", err)
	}
	return requireRow(res, "alarm", id)
}

// SetSnoozedUntil stores a snooze override instant; nil clears it.
func (s *AlarmStore) SetSnoozedUntil(id string, until *time.Time) error {
	var value sql.NullTime
	if until != nil {
		value = sql.NullTime{Time: until.UTC(), Valid: true}
	}

	res, err := s.db.Exec(
		`UPDATE alarms SET snoozed_until = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		value, id,
	)
	if err != nil {
		return fmt.Errorf("set alarm snooze: %w", err)
	}
	return requireRow(res, "alarm", id)
}

func (s *AlarmStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM alarms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}
	return requireRow(res, "alarm", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row rowScanner) (*model.Alarm, error) {
	var a model.Alarm
	var enabled, days, filterActive, beep, speech, ringtone int
	var snoozed sql.NullTime

	err := row.Scan(&a.ID, &a.Label, &a.Time.Hour, &a.Time.Minute, &enabled, &days, &filterActive,
		&beep, &speech, &ringtone, &snoozed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Enabled = enabled != 0
	a.Days = clock.FromMask(days)
	a.FilterActive = filterActive != 0
	a.Beep = beep != 0
	a.Speech = speech != 0
	a.Ringtone = ringtone != 0
	if snoozed.Valid {
		t := snoozed.Time.UTC()
		a.SnoozedUntil = &t
	}
	return &a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", entity, id)
	}
	return nil
}
