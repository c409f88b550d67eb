// Package content serves the hand-edited resident content: the weekly menu
// and the calendar of appointments.
package content

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"caredash/internal/config"
	"caredash/internal/models"
	"caredash/internal/validation"
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var germanWeekdays = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

// Store holds the current content and reloads it when the file changes.
type Store struct {
	path string

	mu       sync.RWMutex
	meals    map[time.Weekday]string
	events   []models.Event
	loadedAt time.Time
}

// NewStore loads the content file at path. A missing file yields the defaults.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads the content file again. On error the previous content is kept.
func (s *Store) Reload() error {
	cfg, err := config.LoadContentFile(s.path)
	if err != nil {
		return err
	}

	meals := make(map[time.Weekday]string, len(cfg.MealPlan))
	for _, m := range cfg.MealPlan {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(m.Day))]
		if !ok {
			log.Printf("Content: ignoring meal for unknown day %q", m.Day)
			continue
		}
		meals[wd] = m.Dish
	}

	events := make([]models.Event, 0, len(cfg.Events))
	for _, e := range cfg.Events {
		start, err := validation.ParseDate(e.Start)
		if err != nil {
			log.Printf("Content: ignoring event %q: %v", e.Title, err)
			continue
		}
		end := start
		if e.End != "" {
			if end, err = validation.ParseDate(e.End); err != nil || end.Before(start) {
				end = start
			}
		}
		events = append(events, models.Event{Title: e.Title, Start: models.NewDate(start), End: models.NewDate(end)})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Time().Before(events[j].Start.Time())
	})

	s.mu.Lock()
	s.meals = meals
	s.events = events
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// MealPlan returns the week's menu from Monday to Sunday, marking today.
func (s *Store) MealPlan(today time.Time) []models.MealPlanDay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	plan := make([]models.MealPlanDay, 0, len(order))
	for _, wd := range order {
		dish, ok := s.meals[wd]
		if !ok {
			continue
		}
		day := models.MealPlanDay{
			Weekday: wd,
			Label:   germanWeekdays[wd],
			Dish:    dish,
			IsToday: wd == today.Weekday(),
		}
		if day.IsToday {
			day.Label += " (Heute)"
		}
		plan = append(plan, day)
	}
	return plan
}

// Events returns all calendar events sorted by start.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Upcoming returns the events that have not ended before from.
func (s *Store) Upcoming(from time.Time) []models.Event {
	day := models.NewDate(from).Time()
	var out []models.Event
	for _, e := range s.Events() {
		if !e.End.Time().Before(day) {
			out = append(out, e)
		}
	}
	return out
}

// Watch reloads the content whenever the file is written or replaced, until
// ctx is cancelled. The parent directory is watched so editors that replace
// the file are picked up too.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("Content: reload failed: %v", err)
					continue
				}
				log.Printf("Content: reloaded %s", s.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Content: watcher error: %v", err)
			}
		}
	}()
	return nil
}
