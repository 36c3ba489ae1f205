package customer

import "testing"

func vec(v float32) []float32 {
	return []float32{v, v}
}

func makeVecs(from, count int) [][]float32 {
	out := make([][]float32, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, vec(float32(from+i)))
	}
	return out
}

func TestMergeEmbeddingsUnderCap(t *testing.T) {
	merged := MergeEmbeddings(makeVecs(0, 3), makeVecs(3, 2), nil)
	if len(merged) != 5 {
		t.Fatalf("merged length = %d, want 5", len(merged))
	}
	for i, m := range merged {
		if m[0] != float32(i) {
			t.Errorf("merged[%d] = %v, want %v", i, m[0], float32(i))
		}
	}
}

func TestMergeEmbeddingsKeepOldest(t *testing.T) {
	// 8 existing + 5 new with cap 10 keeps the first 10 of the concatenation.
	merged := MergeEmbeddings(makeVecs(0, 8), makeVecs(8, 5), KeepOldest)
	if len(merged) != MaxFacesPerPerson {
		t.Fatalf("merged length = %d, want %d", len(merged), MaxFacesPerPerson)
	}
	for i, m := range merged {
		if m[0] != float32(i) {
			t.Errorf("merged[%d] = %v, want %v", i, m[0], float32(i))
		}
	}
}

func TestMergeEmbeddingsKeepNewest(t *testing.T) {
	merged := MergeEmbeddings(makeVecs(0, 8), makeVecs(8, 5), KeepNewest)
	if len(merged) != MaxFacesPerPerson {
		t.Fatalf("merged length = %d, want %d", len(merged), MaxFacesPerPerson)
	}
	// First three of the concatenation are dropped.
	for i, m := range merged {
		if m[0] != float32(i+3) {
			t.Errorf("merged[%d] = %v, want %v", i, m[0], float32(i+3))
		}
	}
}

func TestMergeEmbeddingsEmptyExisting(t *testing.T) {
	merged := MergeEmbeddings(nil, makeVecs(0, 12), nil)
	if len(merged) != MaxFacesPerPerson {
		t.Fatalf("merged length = %d, want %d", len(merged), MaxFacesPerPerson)
	}
}

func TestMergeEmbeddingsNotIdempotent(t *testing.T) {
	first := MergeEmbeddings(nil, makeVecs(0, 3), nil)
	second := MergeEmbeddings(first, makeVecs(0, 3), nil)
	if len(second) != 6 {
		t.Errorf("repeated merge length = %d, want 6 (duplicates allowed)", len(second))
	}
}

func TestFieldUpdateApply(t *testing.T) {
	name := "NGUYEN VAN A"
	r := Record{FullName: "old", Phone: "123"}
	u := FieldUpdate{FullName: &name}
	u.Apply(&r)
	if r.FullName != name {
		t.Errorf("FullName = %q, want %q", r.FullName, name)
	}
	if r.Phone != "123" {
		t.Errorf("Phone = %q, want untouched %q", r.Phone, "123")
	}
}

func TestFieldUpdateIsEmpty(t *testing.T) {
	if !(FieldUpdate{}).IsEmpty() {
		t.Error("zero FieldUpdate should be empty")
	}
	v := "x"
	if (FieldUpdate{Gender: &v}).IsEmpty() {
		t.Error("FieldUpdate with Gender set should not be empty")
	}
}
