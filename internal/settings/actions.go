package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/pkg/converter"
	"github.com/vincent-caetano/how-much/pkg/settings"
	"github.com/vincent-caetano/how-much/pkg/storage"
)

func openStore(c *cli.Context) (*settings.Store, func(), error) {
	database, err := common.OpenDB(c)
	if err != nil {
		return nil, nil, err
	}
	return settings.NewStore(database, common.NewLogger(c)), func() { database.Close() }, nil
}

// ShowAction prints every setting with its current value.
func ShowAction(c *cli.Context) error {
	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	snap, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	info := snap.Wage.SalaryCurrency.Info()
	w := c.App.Writer
	fmt.Fprintf(w, "%-22s %s %s\n", settings.KeySalary, info.Symbol, info.Format(snap.Wage.SalaryAmount))
	fmt.Fprintf(w, "%-22s %s\n", settings.KeyCurrency, snap.Wage.SalaryCurrency)
	if rate, ok := converter.New(nil).Rates()[snap.Wage.SalaryCurrency]; ok {
		fmt.Fprintf(w, "%-22s 1 USD = %s %s (static)\n", "rate", rate.StringFixed(2), snap.Wage.SalaryCurrency)
	}
	fmt.Fprintf(w, "%-22s %s\n", settings.KeyMode, snap.Mode)
	fmt.Fprintf(w, "%-22s %s\n", settings.KeyLanguage, snap.Language)
	fmt.Fprintf(w, "%-22s %d\n", settings.KeyDays, snap.Wage.WorkingDaysPerMonth)
	fmt.Fprintf(w, "%-22s %d\n", settings.KeyHours, snap.Wage.WorkingHoursPerDay)
	fmt.Fprintf(w, "%-22s %d domains (see 'how-much whitelist list')\n", settings.KeyWhitelist, snap.Whitelist.Len())
	return nil
}

// SetAction stores one setting: how-much settings set <key> <value>.
func SetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("Usage: how-much settings set <key> <value>\nKeys: "+strings.Join(settings.Keys, ", "), 1)
	}
	key := c.Args().Get(0)
	value := strings.Join(c.Args().Slice()[1:], " ")

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := store.Set(c.Context, key, value); err != nil {
		return settingError(err)
	}
	fmt.Fprintf(c.App.Writer, "%s updated\n", key)
	return nil
}

// ResetAction restores the default of one setting, or of all of them.
func ResetAction(c *cli.Context) error {
	keys := c.Args().Slice()
	if c.Bool("all") {
		keys = settings.Keys
	}
	if len(keys) == 0 {
		return cli.Exit("Usage: how-much settings reset <key>... | --all", 1)
	}

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	for _, key := range keys {
		if err := store.Reset(c.Context, key); err != nil {
			return settingError(err)
		}
		fmt.Fprintf(c.App.Writer, "%s reset\n", key)
	}
	return nil
}

// ExportAction writes the settings as YAML to --file or stdout. An existing
// file is only replaced with --force.
func ExportAction(c *cli.Context) error {
	files := &storage.Storage{}
	path := c.String("file")
	if path != "" && files.HasFile(path) && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("Error: %s already exists (use --force to overwrite)", path), 1)
	}

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	var w io.Writer = c.App.Writer
	var buf bytes.Buffer
	if path != "" {
		w = &buf
	}
	if err := store.Export(c.Context, w); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	if path != "" {
		if err := files.SaveFile(path, buf.Bytes()); err != nil {
			return err
		}
		stats, err := files.GetFileStats(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "Settings exported to %s (%d bytes)\n", path, stats.SizeBytes)
	}
	return nil
}

// ImportAction loads settings from a YAML file, "-" for stdin.
func ImportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Usage: how-much settings import <file|->", 1)
	}
	s := &storage.Storage{}
	data, err := s.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := store.Import(c.Context, bytes.NewReader(data)); err != nil {
		return settingError(err)
	}
	fmt.Fprintln(c.App.Writer, "Settings imported")
	return nil
}

// settingError turns validation failures into a usage exit.
func settingError(err error) error {
	if errors.Is(err, settings.ErrUnknownSetting) || errors.Is(err, settings.ErrInvalidSetting) {
		return cli.Exit("Error: "+err.Error(), 1)
	}
	return err
}
