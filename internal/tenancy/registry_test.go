package tenancy

import (
	"errors"
	"testing"
)

func clinicRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry("localhost",
		Descriptor{
			HostKey:     "bienestar.localhost",
			DisplayName: "Clínica Bienestar",
			Theme:       "bienestar",
			Branding:    Branding{LogoPath: "/logos/bienestar.png", PrimaryColor: "#0066CC", SecondaryColor: "#00AA44"},
		},
		Descriptor{
			HostKey:     "mindcare.localhost",
			DisplayName: "MindCare Psicología",
			Theme:       "mindcare",
			Branding:    Branding{LogoPath: "/logos/mindcare.png", PrimaryColor: "#6B46C1", SecondaryColor: "#EC4899"},
		},
		Descriptor{
			HostKey:       "localhost",
			DisplayName:   "Administrador General",
			Theme:         "global-admin",
			Branding:      Branding{LogoPath: "/logos/global-admin.png", PrimaryColor: "#1F2937", SecondaryColor: "#3B82F6"},
			IsGlobalAdmin: true,
		},
	)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func TestNewRegistryValidation(t *testing.T) {
	root := Descriptor{HostKey: "localhost", DisplayName: "Root", IsGlobalAdmin: true}

	tests := []struct {
		name        string
		fallback    string
		descriptors []Descriptor
		want        error
	}{
		{
			name:        "missing fallback",
			fallback:    "localhost",
			descriptors: []Descriptor{{HostKey: "a.localhost", DisplayName: "A"}},
			want:        ErrNoFallback,
		},
		{
			name:        "empty fallback key",
			fallback:    "",
			descriptors: []Descriptor{root},
			want:        ErrNoFallback,
		},
		{
			name:        "duplicate host",
			fallback:    "localhost",
			descriptors: []Descriptor{root, {HostKey: "a.localhost"}, {HostKey: "a.localhost"}},
			want:        ErrDuplicateHost,
		},
		{
			name:        "two global admins",
			fallback:    "localhost",
			descriptors: []Descriptor{root, {HostKey: "a.localhost", IsGlobalAdmin: true}},
			want:        ErrMultipleGlobalAdmins,
		},
		{
			name:     "global admin on subdomain",
			fallback: "localhost",
			descriptors: []Descriptor{
				{HostKey: "localhost", DisplayName: "Root"},
				{HostKey: "admin.localhost", IsGlobalAdmin: true},
			},
			want: ErrGlobalAdminNotRoot,
		},
		{
			name:        "empty host key",
			fallback:    "localhost",
			descriptors: []Descriptor{root, {DisplayName: "nameless"}},
			want:        ErrEmptyHost,
		},
		{
			name:        "uppercase host key",
			fallback:    "localhost",
			descriptors: []Descriptor{root, {HostKey: "Bienestar.localhost"}},
			want:        ErrInvalidHost,
		},
		{
			name:        "host key with port",
			fallback:    "localhost",
			descriptors: []Descriptor{root, {HostKey: "bienestar.localhost:5174"}},
			want:        ErrInvalidHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.fallback, tt.descriptors...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewRegistryWithoutGlobalAdmin(t *testing.T) {
	reg, err := NewRegistry("portal.example.com",
		Descriptor{HostKey: "portal.example.com", DisplayName: "Portal"},
		Descriptor{HostKey: "a.example.com", DisplayName: "A"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.GlobalAdmin(); ok {
		t.Fatalf("expected no global admin descriptor")
	}
	if reg.Fallback().DisplayName != "Portal" {
		t.Fatalf("expected Portal fallback, got %s", reg.Fallback().DisplayName)
	}
}

func TestMustRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for registry without fallback")
		}
	}()
	MustRegistry("localhost", Descriptor{HostKey: "a.localhost"})
}

func TestRegistryAccessors(t *testing.T) {
	reg := clinicRegistry(t)

	if reg.Len() != 3 {
		t.Fatalf("expected 3 descriptors, got %d", reg.Len())
	}
	if reg.RootHost() != "localhost" {
		t.Fatalf("expected root localhost, got %s", reg.RootHost())
	}
	admin, ok := reg.GlobalAdmin()
	if !ok || admin.HostKey != "localhost" {
		t.Fatalf("expected global admin on localhost, got %+v", admin)
	}

	tenants := reg.Tenants()
	want := []string{"bienestar.localhost", "localhost", "mindcare.localhost"}
	for i, h := range want {
		if tenants[i].HostKey != h {
			t.Fatalf("tenant %d: expected %s, got %s", i, h, tenants[i].HostKey)
		}
	}

	clinics := reg.Clinics()
	if len(clinics) != 2 {
		t.Fatalf("expected 2 clinics, got %d", len(clinics))
	}
	for _, c := range clinics {
		if c.IsGlobalAdmin {
			t.Fatalf("clinic list must not contain the root entry")
		}
	}

	if _, ok := reg.Get("BIENESTAR.localhost"); ok {
		t.Fatalf("lookup must be an exact match")
	}
}
