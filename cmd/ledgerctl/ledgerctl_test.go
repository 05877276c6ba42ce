package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ceemowww/comtrack2/internal/infrastructure/strategy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	rows := func() [][]string {
		return [][]string{{"acme", "12.50"}, {"globex corporation", "3.00"}}
	}

	t.Run("table aligns columns", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "table")
		require.NoError(t, err)
		require.NoError(t, p.print(nil, []string{"NAME", "OUTSTANDING"}, rows))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 3)
		assert.Equal(t, bytes.Index(lines[0], []byte("OUTSTANDING")), bytes.Index(lines[1], []byte("12.50")))
	})

	t.Run("json ignores the table", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "json")
		require.NoError(t, err)
		require.NoError(t, p.print(map[string]string{"supplier": "acme"}, nil, func() [][]string {
			t.Fatal("rows must not be built for json")
			return nil
		}))
		assert.JSONEq(t, `{"supplier":"acme"}`, buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := newPrinter(&bytes.Buffer{}, "yaml")
		assert.Error(t, err)
	})
}

func TestPrintStrategies(t *testing.T) {
	reg, err := strategy.NewRegistryWithDefaults()
	require.NoError(t, err)

	t.Run("table lists type and description", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "table")
		require.NoError(t, err)
		require.NoError(t, printStrategies(p, reg))

		out := buf.String()
		assert.Contains(t, out, "DESCRIPTION")
		assert.Contains(t, out, "Allocate payments to the oldest outstanding commissions first")
		assert.Contains(t, out, "allocation")
	})

	t.Run("json marks the default", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "json")
		require.NoError(t, err)
		require.NoError(t, printStrategies(p, reg))

		var infos []strategyInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "fifo", infos[0].Name)
		assert.True(t, infos[0].Default)
		assert.Equal(t, "largest_first", infos[1].Name)
		assert.False(t, infos[1].Default)
		assert.Equal(t, "allocation", infos[1].Type)
		assert.NotEmpty(t, infos[1].Description)
	})
}

func TestParseOptionalID(t *testing.T) {
	id, err := parseOptionalID("supplier", "")
	require.NoError(t, err)
	assert.Nil(t, id)

	want := uuid.New()
	id, err = parseOptionalID("supplier", want.String())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, want, *id)

	_, err = parseOptionalID("supplier", "acme")
	assert.ErrorContains(t, err, "--supplier")
}

func TestTenantID(t *testing.T) {
	saved := state.tenant
	t.Cleanup(func() { state.tenant = saved })

	state.tenant = ""
	_, err := tenantID()
	assert.ErrorContains(t, err, "--tenant is required")

	state.tenant = "not-a-uuid"
	_, err = tenantID()
	assert.Error(t, err)

	want := uuid.New()
	state.tenant = want.String()
	got, err := tenantID()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"outstanding", "summary", "payments", "strategies", "export", "auto-allocate", "token", "migrate"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
