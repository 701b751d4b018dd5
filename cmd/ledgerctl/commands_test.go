package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestToken_EmiteJWTVerificable(t *testing.T) {
	t.Setenv("JWT_SECRET", "ctl-secret")

	out, err := execute(t, "token", "--user", "user-9", "--role", "admin")
	require.NoError(t, err)

	userID, role, err := jwt.Parse("ctl-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
	assert.Equal(t, "admin", role)
}

func TestToken_RequiereUsuario(t *testing.T) {
	t.Setenv("JWT_SECRET", "ctl-secret")

	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestReconcile_StoreEnMemoria(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")

	out, err := execute(t, "reconcile", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 0, report["cards_checked"])
	assert.EqualValues(t, 0, report["lots_checked"])
	assert.Contains(t, report, "started_at")
	assert.Contains(t, report, "discrepancies")
	assert.NotContains(t, report, "CardsChecked")
}
