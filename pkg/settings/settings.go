// Package settings loads, validates and persists the user's preferences and
// tells subscribers when they change.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/db"
	"github.com/vincent-caetano/how-much/pkg/normalizer"
	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

const (
	KeySalary    = "userSalary"
	KeyCurrency  = "userCurrency"
	KeyMode      = "spacingMode"
	KeyLanguage  = "userLanguage"
	KeyDays      = "workingDaysPerMonth"
	KeyHours     = "workingHoursPerDay"
	KeyWhitelist = "whitelist"
)

// Keys lists every setting in display order.
var Keys = []string{KeySalary, KeyCurrency, KeyMode, KeyLanguage, KeyDays, KeyHours, KeyWhitelist}

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidSetting = errors.New("invalid setting value")
)

// DefaultLanguage is used until the user picks one.
const DefaultLanguage = "en"

var supportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.Portuguese,
	language.French,
	language.German,
	language.Italian,
	language.Japanese,
	language.Chinese,
}

// Snapshot is the immutable view of every setting taken at one point in time.
type Snapshot struct {
	Wage      models.WageProfile
	Mode      models.PresentationMode
	Language  string
	Whitelist *whitelist.Whitelist
}

// Change describes one stored setting that was modified.
type Change struct {
	Key   string
	Value string
}

// AffectsAnnotation reports whether rendered costs are stale after c.
func (c Change) AffectsAnnotation() bool {
	switch c.Key {
	case KeySalary, KeyCurrency, KeyMode, KeyDays, KeyHours:
		return true
	}
	return false
}

// Source provides settings snapshots and change notifications.
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
	Subscribe(fn func(Change)) (cancel func())
}

// Store is a Source backed by the SQLite database. It is safe for concurrent use.
type Store struct {
	db     *db.DB
	logger *slog.Logger

	mu   sync.Mutex
	subs map[int]func(Change)
	next int
}

// NewStore wraps database. A nil logger means slog.Default().
func NewStore(database *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     database,
		logger: logger,
		subs:   make(map[int]func(Change)),
	}
}

// Load reads every setting, substituting defaults for missing or corrupt
// values. The default whitelist is persisted the first time it is used.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	stored, err := s.db.AllSettings()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load settings: %w", err)
	}

	snap := Snapshot{
		Wage:     models.DefaultWageProfile(),
		Mode:     models.ModeDefault,
		Language: DefaultLanguage,
	}

	if v, ok := stored[KeyCurrency]; ok {
		if cur, err := models.ParseCurrency(v); err == nil {
			snap.Wage.SalaryCurrency = cur
		} else {
			s.logger.Warn("ignoring stored setting", "key", KeyCurrency, "value", v, "error", err)
		}
	}
	if v, ok := stored[KeySalary]; ok {
		if d, err := decimal.NewFromString(v); err == nil && d.Sign() > 0 {
			snap.Wage.SalaryAmount = d
		} else {
			s.logger.Warn("ignoring stored setting", "key", KeySalary, "value", v)
		}
	}
	if v, ok := stored[KeyMode]; ok {
		if m, ok := models.ParsePresentationMode(v); ok {
			snap.Mode = m
		}
	}
	if v, ok := stored[KeyLanguage]; ok {
		if lang, err := parseLanguage(v); err == nil {
			snap.Language = lang
		}
	}
	if v, ok := stored[KeyDays]; ok {
		if n, err := parseBounded(v, 1, 31); err == nil {
			snap.Wage.WorkingDaysPerMonth = n
		}
	}
	if v, ok := stored[KeyHours]; ok {
		if n, err := parseBounded(v, 1, 24); err == nil {
			snap.Wage.WorkingHoursPerDay = n
		}
	}

	wl, err := s.loadWhitelist()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Whitelist = wl

	return snap, nil
}

func (s *Store) loadWhitelist() (*whitelist.Whitelist, error) {
	has, err := s.db.WhitelistStored()
	if err != nil {
		return nil, fmt.Errorf("failed to load whitelist: %w", err)
	}
	if !has {
		wl := whitelist.Default()
		if err := s.db.ReplaceWhitelist(wl.Domains()); err != nil {
			return nil, fmt.Errorf("failed to save default whitelist: %w", err)
		}
		s.logger.Info("default whitelist saved", "domains", wl.Len())
		return wl, nil
	}

	domains, err := s.db.ListWhitelist()
	if err != nil {
		return nil, fmt.Errorf("failed to load whitelist: %w", err)
	}
	return whitelist.New(domains...), nil
}

// Set validates a user supplied value, stores it and notifies subscribers.
// Salaries are read with the stored currency's separators; whitelists are a
// comma or space separated list of domains.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if key == KeyWhitelist {
		return s.SetWhitelist(ctx, whitelist.New(splitDomains(value)...))
	}

	cur := models.USD
	if key == KeySalary {
		var err error
		if cur, err = s.currency(); err != nil {
			return err
		}
	}
	stored, err := canonical(key, value, cur)
	if err != nil {
		return err
	}

	if err := s.db.SetSetting(key, stored); err != nil {
		return err
	}
	s.notify(Change{Key: key, Value: stored})
	return nil
}

// Validate reports whether value is acceptable for key. Salaries are checked
// with US separators.
func Validate(key, value string) error {
	if key == KeyWhitelist {
		return nil
	}
	_, err := canonical(key, value, models.USD)
	return err
}

// canonical returns the stored form of value.
func canonical(key, value string, cur models.CurrencyCode) (string, error) {
	switch key {
	case KeySalary:
		d, err := normalizer.ParseSalary(value, cur)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
		return d.String(), nil

	case KeyCurrency:
		c, err := models.ParseCurrency(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
		return string(c), nil

	case KeyMode:
		m, ok := models.ParsePresentationMode(value)
		if !ok {
			return "", fmt.Errorf("%w: mode %q (want one of %v)", ErrInvalidSetting, value, models.Modes)
		}
		return string(m), nil

	case KeyLanguage:
		return parseLanguage(value)

	case KeyDays:
		n, err := parseBounded(value, 1, 31)
		return strconv.Itoa(n), err

	case KeyHours:
		n, err := parseBounded(value, 1, 24)
		return strconv.Itoa(n), err
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
}

func splitDomains(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

// SetSalary stores an already parsed salary.
func (s *Store) SetSalary(ctx context.Context, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: salary must be positive", ErrInvalidSetting)
	}
	if err := s.db.SetSetting(KeySalary, amount.String()); err != nil {
		return err
	}
	s.notify(Change{Key: KeySalary, Value: amount.String()})
	return nil
}

// SetWhitelist replaces the stored whitelist.
func (s *Store) SetWhitelist(ctx context.Context, wl *whitelist.Whitelist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.ReplaceWhitelist(wl.Domains()); err != nil {
		return err
	}
	s.notify(Change{Key: KeyWhitelist, Value: strings.Join(wl.Domains(), ",")})
	return nil
}

// AddDomain whitelists one domain and reports whether it was new.
func (s *Store) AddDomain(ctx context.Context, domain string) (bool, error) {
	return s.editWhitelist(ctx, func(wl *whitelist.Whitelist) bool { return wl.Add(domain) })
}

// RemoveDomain drops one domain and reports whether it was present.
func (s *Store) RemoveDomain(ctx context.Context, domain string) (bool, error) {
	return s.editWhitelist(ctx, func(wl *whitelist.Whitelist) bool { return wl.Remove(domain) })
}

func (s *Store) editWhitelist(ctx context.Context, edit func(*whitelist.Whitelist) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	wl, err := s.loadWhitelist()
	if err != nil {
		return false, err
	}
	if !edit(wl) {
		return false, nil
	}
	if err := s.SetWhitelist(ctx, wl); err != nil {
		return false, err
	}
	return true, nil
}

// Reset removes a stored value so the default applies again.
func (s *Store) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if key == KeyWhitelist {
		return s.SetWhitelist(ctx, whitelist.Default())
	}
	if err := s.db.DeleteSetting(key); err != nil {
		return err
	}
	s.notify(Change{Key: key})
	return nil
}

// Subscribe registers fn for every future change. The returned func
// unregisters it and may be called more than once.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	s.logger.Debug("setting changed", "key", c.Key)
	for _, fn := range fns {
		fn(c)
	}
}

func (s *Store) currency() (models.CurrencyCode, error) {
	v, ok, err := s.db.GetSetting(KeyCurrency)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.USD, nil
	}
	cur, err := models.ParseCurrency(v)
	if err != nil {
		return models.USD, nil // Corrupt value, Load falls back the same way
	}
	return cur, nil
}

func parseLanguage(v string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(v))
	if err != nil {
		return "", fmt.Errorf("%w: language %q: %v", ErrInvalidSetting, v, err)
	}
	base, _ := tag.Base()
	for _, supported := range supportedLanguages {
		if b, _ := supported.Base(); b == base {
			return base.String(), nil
		}
	}
	return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidSetting, v)
}

func parseBounded(v string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %q must be a whole number from %d to %d", ErrInvalidSetting, v, lo, hi)
	}
	return n, nil
}
