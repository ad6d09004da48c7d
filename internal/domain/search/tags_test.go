package search

import "testing"

func TestParseTagOption(t *testing.T) {
	tests := []struct {
		in      string
		want    TagOption
		wantErr bool
	}{
		{"", TagOptionAny, false},
		{"any", TagOptionAny, false},
		{"all", TagOptionAll, false},
		{"some", "", true},
		{"ALL", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTagOption(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTagOption(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTagOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCriteria(t *testing.T) {
	cases := map[string]CriteriaKind{
		"tagBefore":         CriteriaBefore,
		"tag_prior_to":      CriteriaBefore,
		"declared_prior_to": CriteriaBefore,
		"tagBetween":        CriteriaBetween,
		"tag_between":       CriteriaBetween,
		"declared_between":  CriteriaBetween,
		"tagAfter":          CriteriaAfter,
		"tag_after":         CriteriaAfter,
		"declared_after":    CriteriaAfter,
	}
	for in, want := range cases {
		got, err := ParseCriteria(in)
		if err != nil {
			t.Errorf("ParseCriteria(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCriteria(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseCriteria("sometime"); err == nil {
		t.Error("ParseCriteria(sometime) expected error")
	}
}

func TestNewTagCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria string
		from, to string
		wantErr  bool
	}{
		{"before with to", "tagBefore", "", "2020-05-01", false},
		{"before missing to", "tagBefore", "2020-05-01", "", true},
		{"after with from", "tagAfter", "2020-05-01", "", false},
		{"after missing from", "tagAfter", "", "2020-05-01", true},
		{"between both", "tagBetween", "2020-01-01", "2020-05-01", false},
		{"between missing from", "tagBetween", "", "2020-05-01", true},
		{"bad date", "tagAfter", "May 2020", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTagCriteria(tt.criteria, tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTagCriteria() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProspectStatus(t *testing.T) {
	ps, err := NewProspectStatus("any", []string{"doNotCall", "isBlocked"}, []string{"wrongNumber"}, nil)
	if err != nil {
		t.Fatalf("NewProspectStatus: %v", err)
	}
	if ps.Option() != TagOptionAny {
		t.Errorf("Option() = %q", ps.Option())
	}
	if len(ps.Include()) != 2 || len(ps.Exclude()) != 1 {
		t.Errorf("include/exclude = %v / %v", ps.Include(), ps.Exclude())
	}

	if _, err := NewProspectStatus("any", []string{"archived"}, nil, nil); err == nil {
		t.Error("unknown status should be rejected")
	}
	if _, err := NewProspectStatus("any", nil, []string{"blocked"}, nil); err == nil {
		t.Error("unknown excluded status should be rejected")
	}
}

func TestNewPropertyTagsCopiesInput(t *testing.T) {
	include := []int64{1, 2}
	tags, err := NewPropertyTags("any", include, nil, nil)
	if err != nil {
		t.Fatalf("NewPropertyTags: %v", err)
	}
	include[0] = 42
	if tags.Include()[0] != 1 {
		t.Errorf("constructor did not copy include: %v", tags.Include())
	}
}
