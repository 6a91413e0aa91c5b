package main

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/mobicure/internal/generator"
	"github.com/and161185/mobicure/internal/service"
)

func seededTools() *service.ToolsService {
	return service.NewToolsService(generator.New(rand.New(rand.NewPCG(3, 4))))
}

func TestCLI_Strength(t *testing.T) {
	out := captureStdout(t)
	ts := seededTools()

	require.NoError(t, cmdStrength(ts, []string{"-password", "abc"}))
	require.Equal(t, `score: 1/5 Very Weak
  ✗ length
  ✓ lowercase
  ✗ uppercase
  ✗ numbers
  ✗ symbols
`, out.String())

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("Abcdef1!"), nil }
	out.Reset()
	require.NoError(t, cmdStrength(ts, nil))
	require.True(t, strings.HasPrefix(out.String(), "score: 5/5 Strong\n"))
}

func TestCLI_Risk(t *testing.T) {
	out := captureStdout(t)

	require.NoError(t, cmdRisk(seededTools(), []string{"-weak-passwords", "2", "-public-wifi", "-social-media", "5"}))
	require.Equal(t, `risk score: 70 (medium)
  ! No two-factor authentication
  ! 2 weak passwords
  ! Uses public WiFi frequently
  ! High social media exposure
`, out.String())

	out.Reset()
	require.NoError(t, cmdRisk(seededTools(), []string{"-2fa"}))
	require.Equal(t, "risk score: 0 (low)\n", out.String())
}

func TestCLI_GenPasswordAndGenerators(t *testing.T) {
	out := captureStdout(t)
	ts := seededTools()

	require.NoError(t, cmdGenPassword(ts, []string{"-length", "12", "-symbols=false", "-numbers=false"}))
	pw := strings.TrimSpace(out.String())
	require.Len(t, pw, 12)
	require.Equal(t, -1, strings.IndexFunc(pw, func(r rune) bool { return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') }))

	require.Error(t, cmdGenPassword(ts, []string{"-length", "-1"}))

	out.Reset()
	require.NoError(t, cmdFakeIdentity(ts, nil))
	var id generator.Identity
	require.NoError(t, json.Unmarshal(out.Bytes(), &id))
	require.Contains(t, id.Email, "@")
	require.Len(t, id.ZipCode, 5)

	out.Reset()
	require.NoError(t, cmdMaskEmail(ts, nil))
	require.Regexp(t, `^(temp|secure|private|anon|safe)[0-9a-z]{6}@(tempmail\.com|guerrillamail\.com|10minutemail\.com)\n$`, out.String())

	out.Reset()
	require.Error(t, cmdBreaches(ts, nil))
	require.NoError(t, cmdBreaches(ts, []string{"-email", "me@x.io"}))
	require.NotEmpty(t, out.String())
}

func TestCLI_FormatJSONAndQR(t *testing.T) {
	out := captureStdout(t)
	ts := seededTools()

	p := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"b":1,"a":[true]}`), 0o600))
	require.NoError(t, cmdFormatJSON(ts, []string{"-file", p}))
	require.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}\n", out.String())

	require.NoError(t, os.WriteFile(p, []byte(`{nope`), 0o600))
	require.Error(t, cmdFormatJSON(ts, []string{"-file", p}))

	out.Reset()
	require.NoError(t, cmdQR(ts, []string{"-text", "hi there"}))
	require.Equal(t, "https://api.qrserver.com/v1/create-qr-code/?data=hi+there&size=200x200\n", out.String())
	require.Error(t, cmdQR(ts, []string{"-text", " "}))
}
