package redshift

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, DefaultTemperature, s.TempDay)
	assert.Equal(t, DefaultTemperature, s.TempNight)
	assert.Equal(t, DefaultBrightness, s.BrightnessDay)
	assert.Equal(t, DefaultBrightness, s.BrightnessNight)
	assert.False(t, s.Transition)
	assert.Equal(t, "randr", s.AdjustmentMethod)
	assert.NoError(t, s.Validate())
}

func TestNeutral(t *testing.T) {
	s := Neutral()

	assert.Equal(t, 6500, s.TempNight)
	assert.Equal(t, 1.0, s.BrightnessNight)
}

func TestRender(t *testing.T) {
	want := `[redshift]
temp-day=4500
temp-night=4500
brightness-day=0.80
brightness-night=0.80
transition=0
location-provider=manual
adjustment-method=randr
[manual]
lat=0
lon=0
`
	assert.Equal(t, want, Default().Render())
}

func TestRender_FormatsValues(t *testing.T) {
	s := Settings{
		TempDay:         6500,
		TempNight:       3400,
		BrightnessDay:   1,
		BrightnessNight: 0.555,
		Transition:      true,
		Latitude:        41.39,
		Longitude:       -2.5,
	}

	out := s.Render()

	assert.Contains(t, out, "temp-night=3400\n")
	assert.Contains(t, out, "brightness-day=1.00\n")
	assert.Contains(t, out, "brightness-night=0.56\n")
	assert.Contains(t, out, "transition=1\n")
	assert.Contains(t, out, "adjustment-method=randr\n")
	assert.Contains(t, out, "lat=41.39\n")
	assert.Contains(t, out, "lon=-2.5\n")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"defaults", func(s *Settings) {}, ""},
		{"too cold", func(s *Settings) { s.TempNight = 999 }, "temp-night"},
		{"too hot", func(s *Settings) { s.TempDay = 25001 }, "temp-day"},
		{"too dark", func(s *Settings) { s.BrightnessNight = 0.05 }, "brightness-night"},
		{"too bright", func(s *Settings) { s.BrightnessDay = 1.2 }, "brightness-day"},
		{"bad latitude", func(s *Settings) { s.Latitude = 91 }, "latitude"},
		{"bad longitude", func(s *Settings) { s.Longitude = -181 }, "longitude"},
		{"range edges", func(s *Settings) {
			s.TempDay, s.TempNight = MinTemperature, MaxTemperature
			s.BrightnessDay, s.BrightnessNight = MinBrightness, MaxBrightness
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "redshift.conf")
	s := Uniform(3900, 0.7)

	require.NoError(t, s.Write(path))
	assert.True(t, Exists(path))

	got, found, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, s, got)
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redshift.conf")
	require.NoError(t, os.WriteFile(path, []byte("[redshift]\ntemp-night=3000\n; a very long leftover comment line\n"), 0644))

	require.NoError(t, Default().Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Render(), string(data))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		wantFound bool
		wantErr   bool
		validate  func(t *testing.T, s Settings)
	}{
		{
			name:      "full file",
			file:      "testdata/night.conf",
			wantFound: true,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, 5200, s.TempDay)
				assert.Equal(t, 3700, s.TempNight)
				assert.Equal(t, 0.95, s.BrightnessDay)
				assert.Equal(t, 0.65, s.BrightnessNight)
				assert.True(t, s.Transition)
				assert.Equal(t, "vidmode", s.AdjustmentMethod)
				assert.Equal(t, 41.39, s.Latitude)
				assert.Equal(t, 2.17, s.Longitude)
			},
		},
		{
			name:      "night falls back to day keys",
			file:      "testdata/day_only.conf",
			wantFound: true,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, 5000, s.TempNight)
				assert.Equal(t, 0.9, s.BrightnessNight)
				assert.Equal(t, 5000, s.TempDay)
			},
		},
		{
			name:      "malformed values fall back",
			file:      "testdata/malformed_values.conf",
			wantFound: true,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, 4100, s.TempNight)
				assert.Equal(t, DefaultBrightness, s.BrightnessNight)
			},
		},
		{
			name:      "non-finite brightness falls back",
			file:      "testdata/non_finite.conf",
			wantFound: true,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, 3600, s.TempNight)
				assert.Equal(t, DefaultBrightness, s.BrightnessNight)
				assert.Equal(t, DefaultBrightness, s.BrightnessDay)
				assert.NoError(t, s.Validate())
			},
		},
		{
			name:      "missing section uses defaults",
			file:      "testdata/no_section.conf",
			wantFound: true,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, Default(), s)
			},
		},
		{
			name:      "missing file uses defaults",
			file:      "testdata/does_not_exist.conf",
			wantFound: false,
			validate: func(t *testing.T, s Settings) {
				assert.Equal(t, Default(), s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, found, err := Load(tt.file, nil)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.validate != nil {
				tt.validate(t, s)
			}
		})
	}
}
