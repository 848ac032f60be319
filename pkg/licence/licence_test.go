package licence_test

import (
	"testing"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	for _, raw := range []string{
		"A1234-B5678-C9012",
		"A1234 B5678 C9012",
		"A1234- B5678 -C9012",
		" A1234B5678C9012 ",
	} {
		key := licence.NormalizeKey(raw)
		assert.Equal(t, "A1234B5678C9012", key, raw)
		assert.Equal(t, key, licence.NormalizeKey(key), "normalizing twice is stable")
	}

	assert.Equal(t, "a1234", licence.NormalizeKey("a-12 34"), "case is preserved")
	assert.Equal(t, "", licence.NormalizeKey(" - "))
}

func TestFormatLicenceNumber(t *testing.T) {
	assert.Equal(t, "A1234-B5678-C9012", licence.FormatLicenceNumber("A1234B5678C9012"))
	assert.Equal(t, "A1234-B56-", licence.FormatLicenceNumber("A1234B56"))
	assert.Equal(t, "--", licence.FormatLicenceNumber(""))

	assert.Equal(t, "A1234-B5678-C9012", licence.DisplayKey("A1234B5678C9012", "x"))
	assert.Equal(t, "raw", licence.DisplayKey("A1234", "raw"))
}

func TestDriverRecord_Finalize_AirBrake(t *testing.T) {
	record := &licence.DriverRecord{Class: "D"}

	record.Finalize([]string{"CORRECTIVE LENSES", licence.AirBrakeEndorsement})

	assert.Equal(t, "DZ", record.Class)
	assert.Equal(t, []string{"CORRECTIVE LENSES"}, record.Comments)

	record.Finalize(record.Comments)
	assert.Equal(t, "DZ", record.Class, "finalizing twice must not append a second Z")
	assert.Equal(t, []string{"CORRECTIVE LENSES"}, record.Comments)
}

func TestDriverRecord_Finalize_ExistingZ(t *testing.T) {
	record := &licence.DriverRecord{Class: "AZ"}
	pending := []string{licence.AirBrakeEndorsement, licence.AirBrakeEndorsement}

	record.Finalize(pending)

	assert.Equal(t, "AZ", record.Class)
	assert.Empty(t, record.Comments)
	assert.Len(t, pending, 2, "the caller's pending slice is left alone")
}

func TestDriverRecord_Dates(t *testing.T) {
	record := &licence.DriverRecord{ExpiryDate: "2024-01-17", MedicalDueDate: "20AB-01-01"}

	expiry, err := record.Expiry()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), expiry)

	_, ok := record.MedicalDue()
	assert.False(t, ok)

	record.MedicalDueDate = ""
	_, ok = record.MedicalDue()
	assert.False(t, ok)
}

func TestDriverRecord_IsLicenced(t *testing.T) {
	assert.True(t, (&licence.DriverRecord{LicenceStatus: "Licenced"}).IsLicenced())
	assert.False(t, (&licence.DriverRecord{LicenceStatus: "LICENCED - SUSPENDED"}).IsLicenced())
}

func TestSplitComments(t *testing.T) {
	record := &licence.DriverRecord{Comments: []string{"A", "B"}}

	assert.Equal(t, "A; B", record.CommentText())
	assert.Equal(t, []string{"A", "B"}, licence.SplitComments(record.CommentText()))
	assert.Nil(t, licence.SplitComments(""))
}

func TestSnapshot_Index(t *testing.T) {
	first := &licence.DriverRecord{LicenceNumber: "A1234-B5678-C9012", Class: "D"}
	other := &licence.DriverRecord{LicenceNumber: "X0000-00000-00001"}
	last := &licence.DriverRecord{LicenceNumber: "A1234B5678C9012", Class: "DZ"}

	snapshot := licence.NewSnapshot(time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local), []*licence.DriverRecord{first, other, last})
	index, order := snapshot.Index()

	assert.Equal(t, []string{"A1234B5678C9012", "X00000000000001"}, order)
	assert.Same(t, last, index["A1234B5678C9012"])
	assert.Equal(t, "2024-01-10", snapshot.DateString())
	assert.NotNil(t, licence.NewSnapshot(time.Now(), nil).Records)
}
