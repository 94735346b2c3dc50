package source

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

var descriptorColumns = []string{
	"host_key", "display_name", "theme", "logo_path", "primary_color", "secondary_color", "is_global_admin", "is_fallback",
}

func TestPostgresSourceLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT host_key, display_name").
		WillReturnRows(pgxmock.NewRows(descriptorColumns).
			AddRow("bienestar.localhost", "Clínica Bienestar", "bienestar", "/logos/bienestar.png", "#0066CC", "#00AA44", false, false).
			AddRow("localhost", "Administrador General", "global-admin", "/logos/global-admin.png", "#1F2937", "#3B82F6", true, true).
			AddRow("mindcare.localhost", "MindCare Psicología", "mindcare", "/logos/mindcare.png", "#6B46C1", "#EC4899", false, false))

	src := NewPostgresSource(mock)
	reg, err := src.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "postgres", src.Name())
	assert.Equal(t, "localhost", reg.RootHost())
	d, ok := reg.Get("bienestar.localhost")
	require.True(t, ok)
	assert.Equal(t, "#0066CC", d.Branding.PrimaryColor)
	admin, ok := reg.GlobalAdmin()
	require.True(t, ok)
	assert.Equal(t, "Administrador General", admin.DisplayName)
}

func TestPostgresSourceEmptyTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT host_key").WillReturnRows(pgxmock.NewRows(descriptorColumns))

	_, err = NewPostgresSource(mock).Load(context.Background())
	assert.True(t, errors.Is(err, ErrRegistryNotFound), "got %v", err)
}

func TestPostgresSourceWithoutFallbackRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT host_key").
		WillReturnRows(pgxmock.NewRows(descriptorColumns).
			AddRow("bienestar.localhost", "Clínica Bienestar", "", "", "", "", false, false))

	_, err = NewPostgresSource(mock).Load(context.Background())
	assert.True(t, errors.Is(err, tenancy.ErrNoFallback), "got %v", err)
}

func TestPostgresSourceQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT host_key").WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresSource(mock).Load(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
