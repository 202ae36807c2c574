package safepath

import "testing"

func TestIsSafeName_AcceptsPlainNames(t *testing.T) {
	for _, name := range []string{"report.txt", "analysis_v2.json", "summary-final.md", "data"} {
		if !IsSafeName(name) {
			t.Errorf("IsSafeName(%q) = false, want true", name)
		}
	}
}

func TestIsSafeName_RejectsTraversalAndSeparators(t *testing.T) {
	for _, name := range []string{
		"../../etc/passwd",
		"..",
		"a/b.txt",
		"a\\b.txt",
		"c:report.txt",
		"what?.txt",
		"star*.txt",
		"quo\"te.txt",
		"<tag>.txt",
		"pipe|name",
	} {
		if IsSafeName(name) {
			t.Errorf("IsSafeName(%q) = true, want false", name)
		}
	}
}

func TestIsSafeName_RejectsReservedDeviceNames(t *testing.T) {
	for _, name := range []string{"CON", "con", "con.txt", "NUL.log", "COM1", "com9.dat", "LPT1.txt", "lpt9"} {
		if IsSafeName(name) {
			t.Errorf("IsSafeName(%q) = true, want false", name)
		}
	}

	// COM and LPT without a digit are ordinary names.
	for _, name := range []string{"COM.txt", "LPT", "COM10.txt"} {
		if !IsSafeName(name) {
			t.Errorf("IsSafeName(%q) = false, want true", name)
		}
	}
}

func TestIsSafeName_RejectsEmptyDotAndWhitespace(t *testing.T) {
	for _, name := range []string{"", ".hidden", ".", " leading.txt", "trailing.txt "} {
		if IsSafeName(name) {
			t.Errorf("IsSafeName(%q) = true, want false", name)
		}
	}
}

func TestIsWithinDirectory(t *testing.T) {
	cases := []struct {
		path, base string
		want       bool
	}{
		{"/data/sess1/x.txt", "/data/sess1", true},
		{"/data/sess1", "/data/sess1", true},
		{"/data/sess1/nested/y.txt", "/data/sess1", true},
		{"/data/sess1evil/x.txt", "/data/sess1", false},
		{"/data/sess1/../sess2/x.txt", "/data/sess1", false},
		{"/other/x.txt", "/data/sess1", false},
	}

	for _, c := range cases {
		if got := IsWithinDirectory(c.path, c.base); got != c.want {
			t.Errorf("IsWithinDirectory(%q, %q) = %v, want %v", c.path, c.base, got, c.want)
		}
	}
}
