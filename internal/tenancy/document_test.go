package tenancy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryYAML = `
fallback: localhost
tenants:
  - host: bienestar.localhost
    name: Clínica Bienestar
    theme: bienestar
    branding:
      logo: /logos/bienestar.png
      primary: "#0066CC"
      secondary: "#00AA44"
  - host: mindcare.localhost
    name: MindCare Psicología
    theme: mindcare
  - host: localhost
    name: Administrador General
    theme: global-admin
    global_admin: true
`

func TestParseDocumentYAML(t *testing.T) {
	doc, err := ParseDocument([]byte(registryYAML))
	require.NoError(t, err)
	assert.Equal(t, "localhost", doc.Fallback)
	require.Len(t, doc.Tenants, 3)

	reg, err := doc.Registry()
	require.NoError(t, err)

	d, ok := reg.Get("bienestar.localhost")
	require.True(t, ok)
	assert.Equal(t, Descriptor{
		HostKey:     "bienestar.localhost",
		DisplayName: "Clínica Bienestar",
		Theme:       "bienestar",
		Branding:    Branding{LogoPath: "/logos/bienestar.png", PrimaryColor: "#0066CC", SecondaryColor: "#00AA44"},
	}, d)
	assert.True(t, reg.Fallback().IsGlobalAdmin)
}

func TestParseDocumentJSON(t *testing.T) {
	data := []byte(`{
	"fallback": "localhost",
	"tenants": [
		{"host": "localhost", "name": "Root", "global_admin": true},
		{"host": "mindcare.localhost", "name": "MindCare Psicología", "branding": {"primary": "#6B46C1"}}
	]
}`)
	doc, err := ParseDocument(data)
	require.NoError(t, err)

	reg, err := doc.Registry()
	require.NoError(t, err)
	d, ok := reg.Get("mindcare.localhost")
	require.True(t, ok)
	assert.Equal(t, "#6B46C1", d.Branding.PrimaryColor)
}

func TestParseDocumentRejectsGarbage(t *testing.T) {
	_, err := ParseDocument([]byte("tenants: [unterminated"))
	assert.Error(t, err)

	_, err = ParseDocument([]byte(`{"tenants": `))
	assert.Error(t, err)
}

func TestDocumentRegistryValidates(t *testing.T) {
	doc := Document{
		Fallback: "localhost",
		Tenants:  []DocumentEntry{{Host: "a.localhost", Name: "A"}},
	}
	_, err := doc.Registry()
	assert.True(t, errors.Is(err, ErrNoFallback), "got %v", err)
}

func TestDocumentFromRoundTrip(t *testing.T) {
	reg := clinicRegistry(t)
	data, err := DocumentFrom(reg).JSON()
	require.NoError(t, err)

	doc, err := ParseDocument(data)
	require.NoError(t, err)
	again, err := doc.Registry()
	require.NoError(t, err)

	assert.Equal(t, reg.Tenants(), again.Tenants())
	assert.Equal(t, reg.RootHost(), again.RootHost())
}
