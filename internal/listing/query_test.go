package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQuerySetFilter(t *testing.T) {
	tests := []struct {
		name  string
		steps [][2]string
		want  FilterSet
	}{
		{name: "upsert", steps: [][2]string{{"status", "active"}}, want: FilterSet{"status": "active"}},
		{name: "overwrite", steps: [][2]string{{"status", "active"}, {"status", "inactive"}}, want: FilterSet{"status": "inactive"}},
		{name: "clear removes key", steps: [][2]string{{"status", "active"}, {"status", ""}}, want: FilterSet{}},
		{name: "whitespace clears", steps: [][2]string{{"q", "ana"}, {"q", "   "}}, want: FilterSet{}},
		{name: "clear absent key", steps: [][2]string{{"status", ""}}, want: FilterSet{}},
		{name: "independent keys", steps: [][2]string{{"status", "active"}, {"q", "jo"}, {"status", ""}}, want: FilterSet{"q": "jo"}},
		{name: "blank key ignored", steps: [][2]string{{" ", "x"}}, want: FilterSet{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuery(10)
			for _, s := range tc.steps {
				q.SetFilter(s[0], s[1])
			}
			if diff := cmp.Diff(tc.want, q.Filters); diff != "" {
				t.Fatalf("filters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryClearedKeyNeverPresent(t *testing.T) {
	values := []string{"active", "", "inactive", "", "x"}
	keys := []string{"status", "q", "role"}
	q := NewQuery(10)
	last := map[string]string{}
	for i := 0; i < 60; i++ {
		k := keys[i%len(keys)]
		v := values[(i*7)%len(values)]
		q.SetFilter(k, v)
		last[k] = v
		for key, lv := range last {
			_, present := q.Filters[key]
			if lv == "" && present {
				t.Fatalf("step %d: key %q present after being cleared", i, key)
			}
		}
	}
}

func TestQueryFilterChangeResetsPage(t *testing.T) {
	q := NewQuery(10)
	q.SetPage(3, 20)
	q.SetFilter("status", "active")
	if q.Pagination != (Pagination{Page: 1, PageSize: 20}) {
		t.Fatalf("expected page reset keeping size, got %+v", q.Pagination)
	}

	q.SetPage(4, 0)
	q.SetFilter("status", "")
	if q.Pagination.Page != 1 {
		t.Fatalf("clearing a filter must reset the page, got %d", q.Pagination.Page)
	}
}

func TestQuerySetPageKeepsFilters(t *testing.T) {
	q := NewQuery(10)
	q.SetFilter("status", "active")
	q.SetPage(2, 50)
	if q.Filter("status") != "active" {
		t.Fatalf("page change touched filters: %v", q.Filters)
	}
	q.SetPage(0, -1)
	if q.Pagination != (Pagination{Page: 2, PageSize: 50}) {
		t.Fatalf("invalid values should keep pagination, got %+v", q.Pagination)
	}
}

func TestQueryParams(t *testing.T) {
	q := NewQuery(0)
	if diff := cmp.Diff(map[string]string{"_page": "1", "_limit": "10"}, q.Params()); diff != "" {
		t.Fatalf("initial params (-want +got):\n%s", diff)
	}

	q.SetFilter("status", "active")
	q.SetFilter("_page", "9")
	q.SetPage(2, 25)
	want := map[string]string{"status": "active", "_page": "2", "_limit": "25"}
	if diff := cmp.Diff(want, q.Params()); diff != "" {
		t.Fatalf("params (-want +got):\n%s", diff)
	}
}

func TestQueryCloneIsIndependent(t *testing.T) {
	q := NewQuery(10)
	q.SetFilter("status", "active")
	c := q.Clone()
	c.SetFilter("status", "inactive")
	if q.Filter("status") != "active" {
		t.Fatalf("clone shares filter map")
	}
}
