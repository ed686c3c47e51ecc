package policy

import "testing"

func TestTriagePolicy_SearchOrder(t *testing.T) {
	cases := []struct {
		triage Triage
		want   []SearchStep
	}{
		{"RED", []SearchStep{{Primary: "ALS", Pair: "MV"}, {Primary: "BLS", Pair: "MV"}}},
		{"YELLOW", []SearchStep{{Primary: "ALS"}, {Primary: "BLS"}}},
		{"GREEN", []SearchStep{{Primary: "BLS"}, {Primary: "ALS"}}},
		{"WHITE", []SearchStep{{Primary: "BLS"}}},
		{"BLACK", nil},
	}

	p := TriagePolicy{}
	for _, c := range cases {
		got := p.SearchOrder(c.triage)
		if len(got) != len(c.want) {
			t.Fatalf("SearchOrder(%s) = %v, want %v", c.triage, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("SearchOrder(%s)[%d] = %v, want %v", c.triage, i, got[i], c.want[i])
			}
		}
	}
}

func TestNewMatchingPolicy_DefaultAndNamed(t *testing.T) {
	if _, ok := NewMatchingPolicy("").(TriagePolicy); !ok {
		t.Error(`NewMatchingPolicy("") should return TriagePolicy`)
	}
	if _, ok := NewMatchingPolicy("triage").(TriagePolicy); !ok {
		t.Error(`NewMatchingPolicy("triage") should return TriagePolicy`)
	}
}

func TestNewMatchingPolicy_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewMatchingPolicy with an unknown name should panic")
		}
	}()
	NewMatchingPolicy("bogus")
}
