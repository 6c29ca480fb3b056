package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		location  string
		container string
		name      string
		wantErr   bool
	}{
		{location: "invoices/acme.txt", container: "invoices", name: "acme.txt"},
		{location: "/invoices/2024/01/acme.txt", container: "invoices", name: "2024/01/acme.txt"},
		{location: "acme-e2etests-1/sample-acme-invoice-file.txt", container: "acme-e2etests-1", name: "sample-acme-invoice-file.txt"},
		{location: "invoices", wantErr: true},
		{location: "invoices/", wantErr: true},
		{location: "/acme.txt", wantErr: true},
		{location: "invoices/../../etc/passwd", wantErr: true},
		{location: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			container, name, err := SplitLocation(tt.location)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidLocation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.container, container)
			require.Equal(t, tt.name, name)
		})
	}
}

func TestLocalOpener(t *testing.T) {
	ctx := context.Background()
	o := NewLocalOpener(t.TempDir())
	doc := "==========\n{\"orderNumber\":\"One\"}\n"

	require.NoError(t, o.Upload(ctx, "invoices/2024/acme.txt", strings.NewReader(doc)))

	rc, err := o.Open(ctx, "invoices/2024/acme.txt")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, doc, string(b))
}

func TestLocalOpener_NotFound(t *testing.T) {
	o := NewLocalOpener(t.TempDir())

	_, err := o.Open(context.Background(), "invoices/missing.txt")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = o.Open(context.Background(), "no-container")
	require.ErrorIs(t, err, ErrInvalidLocation)
}
