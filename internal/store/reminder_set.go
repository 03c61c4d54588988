package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"

	"github.com/google/uuid"
)

type ReminderSetStore struct {
	db *sql.DB
}

func NewReminderSetStore(db *sql.DB) *ReminderSetStore {
	return &ReminderSetStore{db: db}
}

func (s *ReminderSetStore) Create(label string, hours []int, showHalfHour bool, interval int, days clock.WeekdaySet, filterActive, beep, speech, ringtone bool) (*model.ReminderSet, error) {
	if len(hours) == 0 {
		return nil, fmt.Errorf("reminder set requires at least one hour")
	}
	if !model.ValidInterval(interval) {
		return nil, fmt.Errorf("invalid repeat interval %d", interval)
	}

	id := uuid.NewString()

	_, err := s.db.Exec(
		`INSERT INTO reminder_sets (id, label, enabled, hours, show_half_hour, interval, days, filter_active, beep, speech, ringtone)
		 VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, label, encodeHours(hours), boolInt(showHalfHour), interval, days.Mask(), boolInt(filterActive),
		boolInt(beep), boolInt(speech), boolInt(ringtone),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder set: %w", err)
	}

	return s.GetByID(id)
}

func (s *ReminderSetStore) GetByID(id string) (*model.ReminderSet, error) {
	row := s.db.QueryRow(
		`SELECT id, label, enabled, hours, show_half_hour, interval, days, filter_active, beep, speech, ringtone, created_at, updated_at
		 FROM reminder_sets WHERE id = ?`,
		id,
	)

	set, err := scanReminderSet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reminder set: %w", err)
	}
	return set, nil
}

func (s *ReminderSetStore) List() ([]model.ReminderSet, error) {
	rows, err := s.db.Query(
		`SELECT id, label, enabled, hours, show_half_hour, interval, days, filter_active, beep, speech, ringtone, created_at, updated_at
		 FROM reminder_sets ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query reminder sets: %w", err)
	}
	defer rows.Close()

	var sets []model.ReminderSet
	for rows.Next() {
		set, err := scanReminderSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder set: %w", err)
		}
		sets = append(sets, *set)
	}
	return sets, rows.Err()
}

func (s *ReminderSetStore) Update(set model.ReminderSet) error {
	if len(set.Hours) == 0 {
		return fmt.Errorf("reminder set requires at least one hour")
	}
	if !model.ValidInterval(set.Interval) {
		return fmt.Errorf("invalid repeat interval %d", set.Interval)
	}

	res, err := s.db.Exec(
		`UPDATE reminder_sets
		 SET label = ?, enabled = ?, hours = ?, show_half_hour = ?, interval = ?, days = ?, filter_active = ?,
		     beep = ?, speech = ?, ringtone = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		set.Label, boolInt(set.Enabled), encodeHours(set.Hours), boolInt(set.ShowHalfHour), set.Interval,
		set.Days.Mask(), boolInt(set.FilterActive), boolInt(set.Beep), boolInt(set.Speech), boolInt(set.Ringtone), set.ID,
	)
	if err != nil {
		return fmt.Errorf("update reminder set: %w", err)
	}
	return requireRow(res, "reminder set", set.ID)
}

func (s *ReminderSetStore) SetEnabled(id string, enabled bool) error {
	res, err := s.db.Exec(
		`UPDATE reminder_sets SET enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolInt(enabled), id,
	)
	if err != nil {
		return fmt.Errorf("set reminder set enabled: %w", err)
	}
	return requireRow(res, "reminder set", id)
}

func (s *ReminderSetStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM reminder_sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder set: %w", err)
	}
	return requireRow(res, "reminder set", id)
}

func scanReminderSet(row rowScanner) (*model.ReminderSet, error) {
	var set model.ReminderSet
	var enabled, halfHour, days, filterActive, beep, speech, ringtone int
	var hours string

	err := row.Scan(&set.ID, &set.Label, &enabled, &hours, &halfHour, &set.Interval, &days, &filterActive,
		&beep, &speech, &ringtone, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		return nil, err
	}

	set.Enabled = enabled != 0
	set.Hours = decodeHours(hours)
	set.ShowHalfHour = halfHour != 0
	set.Days = clock.FromMask(days)
	set.FilterActive = filterActive != 0
	set.Beep = beep != 0
	set.Speech = speech != 0
	set.Ringtone = ringtone != 0
	return &set, nil
}

// encodeHours stores the hour list as a sorted comma-separated string.
func encodeHours(hours []int) string {
	sorted := make([]int, 0, len(hours))
	seen := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		sorted = append(sorted, h)
	}
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, h := range sorted {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, ",")
}

func decodeHours(encoded string) []int {
	if encoded == "" {
		return nil
	}
	var hours []int
	for _, part := range strings.Split(encoded, ",") {
		h, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		hours = append(hours, h)
	}
	return hours
}
