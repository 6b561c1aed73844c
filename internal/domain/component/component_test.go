package component

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLicense(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"alternatives", "MIT or Apache-2.0", []string{"MIT", "Apache-2.0"}},
		{"single", "BSD-3-Clause", []string{"BSD-3-Clause"}},
		{"placeholder", "Not-Declared", []string{}},
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"placeholder alternative", "UNSPECIFIED or MIT", []string{"MIT"}},
		{"padded", " GPL-2.0 or  ", []string{"GPL-2.0"}},
		{"all placeholders", "No Sources or No-Sources or Not Declared", []string{}},
		{"upper OR is not a separator", "MIT OR Apache-2.0", []string{"MIT OR Apache-2.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLicense(tt.in))
		})
	}
}

func TestInfo_LicenseNames(t *testing.T) {
	var info Info
	err := json.Unmarshal([]byte(`{
		"declaredLicenses": [{"licenseId": "MIT"}, {"licenseId": "Not-Declared"}],
		"observedLicenses": [{"licenseId": "MIT"}, {"licenseId": "", "licenseName": "Apache-2.0 or BSD-2-Clause"}],
		"componentIdentifier": {"format": "maven"},
		"extra": 42
	}`), &info)
	require.NoError(t, err)

	assert.Equal(t, []string{"MIT", "Apache-2.0", "BSD-2-Clause"}, info.LicenseNames())
	assert.False(t, info.IsEmpty())
}

func TestInfo_DeclaredAndObservedSame(t *testing.T) {
	var info Info
	require.NoError(t, json.Unmarshal([]byte(`{"declaredLicenses":[{"licenseId":"MIT"}],"observedLicenses":[{"licenseId":"MIT"}]}`), &info))

	assert.Equal(t, []string{"MIT"}, info.LicenseNames())
}

func TestInfo_Nil(t *testing.T) {
	var info *Info
	assert.True(t, info.IsEmpty())
	assert.Empty(t, info.LicenseNames())
}
