package present

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	var out, status bytes.Buffer
	p := NewWithIO(&out, &status)

	require.NoError(t, p.Print(map[string]any{"text": "hi"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{"text": "hi"}, got)
	assert.Empty(t, status.String())
}

func TestPrint_Unencodable(t *testing.T) {
	var out, status bytes.Buffer
	p := NewWithIO(&out, &status)

	err := p.Print(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestSpinner_NonTTY(t *testing.T) {
	var out, status bytes.Buffer
	p := NewWithIO(&out, &status)

	s := p.Spinner("Connecting to server...")
	s.Success("Connected, server capabilities: tools")
	s.Error("ignored after finish")

	assert.Contains(t, status.String(), "Connecting to server...")
	assert.Contains(t, status.String(), "✔ Connected, server capabilities: tools")
	assert.NotContains(t, status.String(), "ignored")
	assert.Empty(t, out.String())
}

func TestSpinner_Error(t *testing.T) {
	var status bytes.Buffer
	p := NewWithIO(&bytes.Buffer{}, &status)

	p.Spinner("Using tool echo...").Error("")
	assert.Contains(t, status.String(), "✖ Using tool echo...")
}

func TestStatusLines(t *testing.T) {
	var status bytes.Buffer
	p := NewWithIO(&bytes.Buffer{}, &status)

	p.Errorf("connection failed: %s", "refused")
	p.Hint("Check the server command")
	p.AuthorizationURL("https://auth.example/authorize?x=1")

	s := status.String()
	assert.Contains(t, s, "✖ connection failed: refused")
	assert.Contains(t, s, "Check the server command")
	assert.Contains(t, s, "https://auth.example/authorize?x=1")
}
