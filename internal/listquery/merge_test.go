package listquery

import "testing"

type mergeRow struct{ ID string }

func TestMergeByID(t *testing.T) {
	id := func(r mergeRow) string { return r.ID }

	page1 := []mergeRow{{"a"}, {"b"}, {"c"}}
	page2 := []mergeRow{{"c"}, {"d"}, {"e"}} // "c" shifted across the boundary

	merged := MergeByID(page1, page2, id)
	want := []string{"a", "b", "c", "d", "e"}
	if len(merged) != len(want) {
		t.Fatalf("len = %d, want %d", len(merged), len(want))
	}
	for i, w := range want {
		if merged[i].ID != w {
			t.Errorf("merged[%d] = %q, want %q", i, merged[i].ID, w)
		}
	}
}

func TestMergeByIDEmpty(t *testing.T) {
	id := func(r mergeRow) string { return r.ID }

	if got := MergeByID(nil, nil, id); len(got) != 0 {
		t.Errorf("merge of nils = %v, want empty", got)
	}
	if got := MergeByID(nil, []mergeRow{{"a"}}, id); len(got) != 1 {
		t.Errorf("merge into nil = %v, want 1 row", got)
	}
}

func TestMergeByIDIdempotent(t *testing.T) {
	id := func(r mergeRow) string { return r.ID }

	page := []mergeRow{{"a"}, {"b"}}
	merged := MergeByID(page, page, id)
	if len(merged) != 2 {
		t.Errorf("len = %d, want 2 (appending the same page twice must not duplicate)", len(merged))
	}
}
