package tenancy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a registry, shared by every registry
// source. YAML and JSON encodings use the same keys.
type Document struct {
	Fallback string          `yaml:"fallback" json:"fallback"`
	Tenants  []DocumentEntry `yaml:"tenants" json:"tenants"`
}

// DocumentEntry is one tenant inside a Document.
type DocumentEntry struct {
	Host        string           `yaml:"host" json:"host"`
	Name        string           `yaml:"name" json:"name"`
	Theme       string           `yaml:"theme,omitempty" json:"theme,omitempty"`
	Branding    DocumentBranding `yaml:"branding,omitempty" json:"branding,omitempty"`
	GlobalAdmin bool             `yaml:"global_admin,omitempty" json:"global_admin,omitempty"`
}

// DocumentBranding mirrors Branding with the document's short keys.
type DocumentBranding struct {
	Logo      string `yaml:"logo,omitempty" json:"logo,omitempty"`
	Primary   string `yaml:"primary,omitempty" json:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty" json:"secondary,omitempty"`
}

// ParseDocument decodes a YAML or JSON registry document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("tenancy: parse registry json: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("tenancy: parse registry yaml: %w", err)
	}
	return doc, nil
}

// Registry validates the document and builds the registry it describes.
func (d Document) Registry() (*Registry, error) {
	descriptors := make([]Descriptor, 0, len(d.Tenants))
	for _, e := range d.Tenants {
		descriptors = append(descriptors, e.Descriptor())
	}
	return NewRegistry(d.Fallback, descriptors...)
}

// Descriptor converts the entry to its runtime form.
func (e DocumentEntry) Descriptor() Descriptor {
	return Descriptor{
		HostKey:     e.Host,
		DisplayName: e.Name,
		Theme:       e.Theme,
		Branding: Branding{
			LogoPath:       e.Branding.Logo,
			PrimaryColor:   e.Branding.Primary,
			SecondaryColor: e.Branding.Secondary,
		},
		IsGlobalAdmin: e.GlobalAdmin,
	}
}

// DocumentFrom snapshots a registry back into its serialized form.
func DocumentFrom(reg *Registry) Document {
	doc := Document{Fallback: reg.RootHost()}
	for _, t := range reg.Tenants() {
		doc.Tenants = append(doc.Tenants, DocumentEntry{
			Host:  t.HostKey,
			Name:  t.DisplayName,
			Theme: t.Theme,
			Branding: DocumentBranding{
				Logo:      t.Branding.LogoPath,
				Primary:   t.Branding.PrimaryColor,
				Secondary: t.Branding.SecondaryColor,
			},
			GlobalAdmin: t.IsGlobalAdmin,
		})
	}
	return doc
}

// JSON encodes the document for stores that keep it as a blob.
func (d Document) JSON() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("tenancy: marshal registry document: %w", err)
	}
	return data, nil
}
