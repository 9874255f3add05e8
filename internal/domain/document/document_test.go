package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingDocument(t *testing.T) {
	doc, err := NewBookingDocument(uuid.New(), uuid.New(), TypeContract, " https://cdn.joyhomes.vn/hd-001.pdf ", "Hợp đồng")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.joyhomes.vn/hd-001.pdf", doc.URL())
	assert.Equal(t, TypeContract, doc.Type())
}

func TestNewBookingDocument_Invalid(t *testing.T) {
	cases := map[string]struct {
		typ DocumentType
		url string
	}{
		"unknown type": {typ: "PHOTO", url: "https://x.vn/a.jpg"},
		"empty url":    {typ: TypeReceipt, url: ""},
		"no scheme":    {typ: TypeReceipt, url: "x.vn/a.jpg"},
		"ftp":          {typ: TypeReceipt, url: "ftp://x.vn/a.jpg"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBookingDocument(uuid.New(), uuid.New(), tc.typ, tc.url, "")
			assert.Error(t, err)
		})
	}
}
