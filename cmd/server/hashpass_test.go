package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrezm/TsuserverDR/internal/auth"
)

func TestHashpassFromArgument(t *testing.T) {
	cmd := hashpassCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hunter2"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(out.String())
	assert.True(t, auth.IsHash(hash))
	assert.NoError(t, auth.ComparePassword(hash, "hunter2"))
}

func TestHashpassFromStdin(t *testing.T) {
	cmd := hashpassCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.NoError(t, auth.ComparePassword(strings.TrimSpace(out.String()), "s3cret"))
}

func TestHashpassRejectsEmpty(t *testing.T) {
	cmd := hashpassCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}
