package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

// File is the YAML form of a Snapshot. Salaries are written in canonical
// decimal notation so files move between currencies unchanged.
type File struct {
	Salary              decimal.Decimal `yaml:"userSalary"`
	Currency            string          `yaml:"userCurrency"`
	Mode                string          `yaml:"spacingMode"`
	Language            string          `yaml:"userLanguage"`
	WorkingDaysPerMonth int             `yaml:"workingDaysPerMonth"`
	WorkingHoursPerDay  int             `yaml:"workingHoursPerDay"`
	Whitelist           []string        `yaml:"whitelist"`
}

// Export writes the current settings as YAML.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}

	f := File{
		Salary:              snap.Wage.SalaryAmount,
		Currency:            string(snap.Wage.SalaryCurrency),
		Mode:                string(snap.Mode),
		Language:            snap.Language,
		WorkingDaysPerMonth: snap.Wage.WorkingDaysPerMonth,
		WorkingHoursPerDay:  snap.Wage.WorkingHoursPerDay,
		Whitelist:           snap.Whitelist.Domains(),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return enc.Close()
}

// Import reads YAML written by Export and stores every field present.
// Fields are validated before anything is written.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty settings file", ErrInvalidSetting)
		}
		return fmt.Errorf("failed to decode settings: %w", err)
	}
	if !f.Salary.IsZero() && f.Salary.Sign() < 0 {
		return fmt.Errorf("%w: salary must be positive", ErrInvalidSetting)
	}

	var sets []entry
	if f.Currency != "" {
		sets = append(sets, entry{KeyCurrency, f.Currency})
	}
	if f.Mode != "" {
		sets = append(sets, entry{KeyMode, f.Mode})
	}
	if f.Language != "" {
		sets = append(sets, entry{KeyLanguage, f.Language})
	}
	if f.WorkingDaysPerMonth != 0 {
		sets = append(sets, entry{KeyDays, strconv.Itoa(f.WorkingDaysPerMonth)})
	}
	if f.WorkingHoursPerDay != 0 {
		sets = append(sets, entry{KeyHours, strconv.Itoa(f.WorkingHoursPerDay)})
	}

	if err := validate(sets); err != nil {
		return err
	}
	for _, e := range sets {
		if err := s.Set(ctx, e.key, e.value); err != nil {
			return fmt.Errorf("failed to import %s: %w", e.key, err)
		}
	}
	if !f.Salary.IsZero() {
		if err := s.SetSalary(ctx, f.Salary); err != nil {
			return fmt.Errorf("failed to import %s: %w", KeySalary, err)
		}
	}
	if len(f.Whitelist) > 0 {
		if err := s.SetWhitelist(ctx, whitelist.New(f.Whitelist...)); err != nil {
			return fmt.Errorf("failed to import %s: %w", KeyWhitelist, err)
		}
	}
	return nil
}

type entry struct{ key, value string }

// validate dry-runs every value Set would check.
func validate(sets []entry) error {
	for _, e := range sets {
		if err := Validate(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}
