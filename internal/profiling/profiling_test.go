package profiling

import (
	"strings"
	"testing"
)

func TestTrackAccumulatesPerPass(t *testing.T) {
	ResetPass()
	for i := 0; i < 3; i++ {
		Track("test.section")()
	}
	if got := Count("test.section"); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
	if _, ok := Snapshot()["test.section"]; !ok {
		t.Fatal("section missing from snapshot")
	}
	if !strings.HasPrefix(TopN(1), "test.section:") {
		t.Fatalf("TopN = %q", TopN(1))
	}

	ResetPass()
	if Count("test.section") != 0 || TopN(5) != "" {
		t.Fatal("ResetPass left totals behind")
	}
}

func TestRegistryExportsSections(t *testing.T) {
	Track("test.exported")()
	families, err := Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "voxelkit_section_duration_seconds" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == "test.exported" && m.GetHistogram().GetSampleCount() > 0 {
					return
				}
			}
		}
	}
	t.Fatal("tracked section not observed in the histogram")
}

func TestFormatMs(t *testing.T) {
	for in, want := range map[float64]string{2: "2ms", 2.25: "2.2ms", 0.04: "0ms"} {
		if got := formatMs(in); got != want {
			t.Errorf("formatMs(%v) = %q, want %q", in, got, want)
		}
	}
}
