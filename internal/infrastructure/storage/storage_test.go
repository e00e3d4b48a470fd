package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	tenantID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	att := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	assert.Equal(t,
		"tenants/11111111-1111-1111-1111-111111111111/companies/22222222-2222-2222-2222-222222222222/logo/logo.png",
		CompanyLogoKey(tenantID, id, "logo.png"))
	assert.Equal(t,
		"tenants/11111111-1111-1111-1111-111111111111/users/22222222-2222-2222-2222-222222222222/photo/me.jpg",
		UserPhotoKey(tenantID, id, "me.jpg"))
	assert.Equal(t,
		"tenants/11111111-1111-1111-1111-111111111111/purchase-orders/22222222-2222-2222-2222-222222222222/attachments/33333333-3333-3333-3333-333333333333/invoice.pdf",
		AttachmentKey(tenantID, id, att, "invoice.pdf"))
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"invoice.pdf", "invoice.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\scans\bill 12.pdf`, "bill_12.pdf"},
		{"..", "file"},
		{"", "file"},
		{"चालान.pdf", "_____.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanFileName(tt.in))
		})
	}
}

func TestCheckUploads(t *testing.T) {
	assert.NoError(t, CheckImage("image/png", 1024))
	assert.NoError(t, CheckImage("IMAGE/JPEG; charset=binary", 1024))
	assert.ErrorIs(t, CheckImage("image/svg+xml", 1024), ErrUnsupportedContentType)
	assert.ErrorIs(t, CheckImage("application/pdf", 1024), ErrUnsupportedContentType)
	assert.ErrorIs(t, CheckImage("image/png", MaxUploadSize+1), ErrFileTooLarge)
	assert.ErrorIs(t, CheckImage("image/png", 0), ErrFileTooLarge)

	assert.NoError(t, CheckDocument("application/pdf", MaxUploadSize))
	assert.ErrorIs(t, CheckDocument("application/x-msdownload", 10), ErrUnsupportedContentType)
}
