package whitelist

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:      "how-much",
		Writer:    &out,
		ErrWriter: &out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db"},
			&cli.BoolFlag{Name: "quiet", Value: true},
			&cli.BoolFlag{Name: "verbose"},
		},
		Commands: []*cli.Command{{
			Name: "whitelist",
			Subcommands: []*cli.Command{
				{Name: "list", Action: ListAction},
				{Name: "add", Action: AddAction},
				{Name: "remove", Action: RemoveAction},
				{Name: "check", Action: CheckAction},
				{Name: "reset", Action: ResetAction},
			},
		}},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"how-much", "--db", dbPath, "whitelist"}, args...))
	return out.String(), err
}

func TestListAction_Defaults(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "w.db"), "list")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. google.com")
	assert.Contains(t, out, "21. aliexpress.com")
	assert.Contains(t, out, "Total: 21 domains")
}

func TestAddRemoveAction(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "w.db")

	out, err := run(t, dbPath, "add", "https://www.Shop.test/cart", "amazon.com")
	require.NoError(t, err)
	assert.Contains(t, out, "added shop.test")
	assert.Contains(t, out, "amazon.com is already whitelisted")

	out, err = run(t, dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "22. shop.test")

	out, err = run(t, dbPath, "remove", "shop.test", "nowhere.test")
	require.NoError(t, err)
	assert.Contains(t, out, "removed shop.test")
	assert.Contains(t, out, "nowhere.test is not in the whitelist")

	var exit cli.ExitCoder
	_, err = run(t, dbPath, "add")
	require.ErrorAs(t, err, &exit)
}

func TestCheckAction(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "w.db")

	out, err := run(t, dbPath, "check", "https://smile.amazon.com/dp/1")
	require.NoError(t, err)
	assert.Contains(t, out, "yes  https://smile.amazon.com/dp/1 (smile.amazon.com) [subdomain]\n")

	out, err = run(t, dbPath, "check", "https://www.amazon.com/gp/cart")
	require.NoError(t, err)
	assert.Contains(t, out, "yes  https://www.amazon.com/gp/cart (amazon.com)\n")
	assert.NotContains(t, out, "[subdomain]")

	out, err = run(t, dbPath, "check", "https://www.amazon.com", "https://blog.test/post")
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
	assert.Contains(t, out, "no   https://blog.test/post (blog.test)")
}

func TestResetAction(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "w.db")

	_, err := run(t, dbPath, "remove", "google.com")
	require.NoError(t, err)
	out, err := run(t, dbPath, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Whitelist reset to 21 default domains")

	out, err = run(t, dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. google.com")
}
