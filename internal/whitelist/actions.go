package whitelist

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/pkg/settings"
	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

func openStore(c *cli.Context) (*settings.Store, func(), error) {
	database, err := common.OpenDB(c)
	if err != nil {
		return nil, nil, err
	}
	return settings.NewStore(database, common.NewLogger(c)), func() { database.Close() }, nil
}

// ListAction prints the whitelisted domains in order.
func ListAction(c *cli.Context) error {
	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	snap, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load whitelist: %w", err)
	}
	for i, d := range snap.Whitelist.Domains() {
		fmt.Fprintf(c.App.Writer, "%2d. %s\n", i+1, d)
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d domains\n", snap.Whitelist.Len())
	return nil
}

// AddAction adds one or more domains.
func AddAction(c *cli.Context) error {
	return edit(c, "add", func(s *settings.Store, domain string) (bool, error) {
		return s.AddDomain(c.Context, domain)
	})
}

// RemoveAction removes one or more domains.
func RemoveAction(c *cli.Context) error {
	return edit(c, "remove", func(s *settings.Store, domain string) (bool, error) {
		return s.RemoveDomain(c.Context, domain)
	})
}

func edit(c *cli.Context, verb string, apply func(*settings.Store, string) (bool, error)) error {
	if c.NArg() == 0 {
		return cli.Exit(fmt.Sprintf("Usage: how-much whitelist %s <domain>...", verb), 1)
	}

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	for _, arg := range c.Args().Slice() {
		domain := whitelist.DomainFromURL(arg)
		if domain == "" {
			return cli.Exit(fmt.Sprintf("Error: %q is not a domain", arg), 1)
		}
		changed, err := apply(store, domain)
		if err != nil {
			return err
		}
		switch {
		case changed && verb == "add":
			fmt.Fprintf(c.App.Writer, "added %s\n", domain)
		case changed:
			fmt.Fprintf(c.App.Writer, "removed %s\n", domain)
		case verb == "add":
			fmt.Fprintf(c.App.Writer, "%s is already whitelisted\n", domain)
		default:
			fmt.Fprintf(c.App.Writer, "%s is not in the whitelist\n", domain)
		}
	}
	return nil
}

// CheckAction reports whether each URL would be annotated, flagging matches
// that come from a parent entry. Exits 1 when any is outside the whitelist.
func CheckAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("Usage: how-much whitelist check <url>...", 1)
	}

	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	snap, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load whitelist: %w", err)
	}

	missing := 0
	for _, u := range c.Args().Slice() {
		domain := whitelist.DomainFromURL(u)
		if snap.Whitelist.IsWhitelisted(domain) {
			via := ""
			if !snap.Whitelist.Contains(domain) {
				via = " [subdomain]"
			}
			fmt.Fprintf(c.App.Writer, "yes  %s (%s)%s\n", u, domain, via)
			continue
		}
		missing++
		fmt.Fprintf(c.App.Writer, "no   %s (%s)\n", u, domain)
	}
	if missing > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// ResetAction restores the default shopping domains.
func ResetAction(c *cli.Context) error {
	store, closeDB, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := store.Reset(c.Context, settings.KeyWhitelist); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Whitelist reset to %d default domains\n", whitelist.Default().Len())
	return nil
}
