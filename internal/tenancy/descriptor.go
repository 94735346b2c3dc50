// Package tenancy maps the host a request arrived on to the clinic it belongs
// to, the portal mode it runs in and the backend origin it must talk to.
package tenancy

// Branding holds the visual identity a clinic portal renders with.
type Branding struct {
	LogoPath       string `json:"logo_path"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// Descriptor is the static configuration of one tenant, keyed by the exact
// host it is served on.
type Descriptor struct {
	HostKey     string   `json:"host_key"`
	DisplayName string   `json:"display_name"`
	Theme       string   `json:"theme"`
	Branding    Branding `json:"branding"`
	// IsGlobalAdmin marks the system-wide administrator entry. Only the root
	// host may carry it.
	IsGlobalAdmin bool `json:"is_global_admin"`
}
