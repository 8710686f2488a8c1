package ids

import "testing"

func TestNewIsSortableAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 100; i++ {
		id := New()
		if len(id) != 26 {
			t.Fatalf("unexpected id length: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id < prev {
			t.Fatalf("ids not monotonic: %q < %q", id, prev)
		}
		prev = id
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(New()) {
		t.Fatal("generated id reported invalid")
	}
	for _, bad := range []string{"", "not-a-ulid", "0000"} {
		if IsValid(bad) {
			t.Fatalf("IsValid(%q) = true", bad)
		}
	}
}
