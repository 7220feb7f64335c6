package dither

import "testing"

func TestDitherTypeString(t *testing.T) {
	tests := []struct {
		dt   DitherType
		want string
	}{
		{DitherNone, "None"},
		{DitherRectangular, "Rectangular"},
		{DitherTriangular, "Triangular"},
		{DitherGaussian, "Gaussian"},
		{DitherFastGaussian, "FastGaussian"},
		{DitherType(99), "DitherType(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.dt.String(); got != tt.want {
				t.Errorf("DitherType(%d).String() = %q, want %q", tt.dt, got, tt.want)
			}
		})
	}
}

func TestDitherTypeValid(t *testing.T) {
	if !DitherTriangular.Valid() {
		t.Error("DitherTriangular should be valid")
	}
	if DitherType(99).Valid() {
		t.Error("DitherType(99) should be invalid")
	}
}

func TestParseDitherType(t *testing.T) {
	tests := []struct {
		in   string
		want DitherType
	}{
		{"", DitherTriangular},
		{"TPDF", DitherTriangular},
		{"none", DitherNone},
		{"rpdf", DitherRectangular},
		{"gaussian", DitherGaussian},
		{"fast-gaussian", DitherFastGaussian},
	}
	for _, tt := range tests {
		got, err := ParseDitherType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseDitherType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseDitherType("pink"); err == nil {
		t.Error("ParseDitherType(pink) should fail")
	}
}
