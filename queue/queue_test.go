package queue

import (
	"testing"

	"github.com/ByLCY/pricelabel/label"
)

func prod(id string, qty int) label.Product {
	return label.Product{ID: id, Name: "SP " + id, Price: "1000", Barcode: "BC" + id, Quantity: qty}
}

func ids(g label.PageGroup) [2]string {
	var out [2]string
	for i, inst := range g {
		if inst != nil {
			out[i] = inst.Product.ID
		}
	}
	return out
}

func TestExpandPairsContiguously(t *testing.T) {
	groups := Expand([]label.Product{prod("A", 3), prod("B", 1)})
	want := [][2]string{{"A", "A"}, {"A", "B"}}
	if len(groups) != len(want) {
		t.Fatalf("groups: got=%d want=%d", len(groups), len(want))
	}
	for i := range want {
		if got := ids(groups[i]); got != want[i] {
			t.Fatalf("group %d: got=%v want=%v", i, got, want[i])
		}
	}
	if groups[1][1].Seq != 3 {
		t.Fatalf("seq of last instance: got=%d want=3", groups[1][1].Seq)
	}
}

func TestExpandOddLeavesEmptySlot(t *testing.T) {
	groups := Expand([]label.Product{prod("A", 1)})
	if len(groups) != 1 {
		t.Fatalf("groups: got=%d want=1", len(groups))
	}
	if groups[0][0] == nil || groups[0][1] != nil {
		t.Fatalf("expected [A, empty], got %v", ids(groups[0]))
	}
	if groups[0].Filled() != 1 {
		t.Fatalf("filled: got=%d", groups[0].Filled())
	}
}

func TestExpandCounts(t *testing.T) {
	cases := [][]int{{1}, {2}, {1, 1, 1}, {5, 4, 3}, {7}, {1, 2, 3, 4, 5}}
	for _, qtys := range cases {
		var products []label.Product
		sum := 0
		for i, q := range qtys {
			products = append(products, prod(string(rune('A'+i)), q))
			sum += q
		}
		if n := len(Flatten(products)); n != sum {
			t.Fatalf("%v: instances got=%d want=%d", qtys, n, sum)
		}
		if n := len(Expand(products)); n != (sum+1)/2 {
			t.Fatalf("%v: groups got=%d want=%d", qtys, n, (sum+1)/2)
		}
		labels, pages := Totals(products)
		if labels != sum || pages != (sum+1)/2 {
			t.Fatalf("%v: totals got=%d/%d", qtys, labels, pages)
		}
	}
}

func TestExpandDropsNonPositiveQuantity(t *testing.T) {
	groups := Expand([]label.Product{prod("A", 0), prod("B", -2), prod("C", 1)})
	if len(groups) != 1 || ids(groups[0]) != [2]string{"C", ""} {
		t.Fatalf("unexpected groups: %d", len(groups))
	}
	if len(Expand(nil)) != 0 {
		t.Fatalf("empty input should give no groups")
	}
}

func TestExpandDeterministic(t *testing.T) {
	products := []label.Product{prod("A", 2), prod("B", 3)}
	a, b := Expand(products), Expand(products)
	for i := range a {
		if ids(a[i]) != ids(b[i]) {
			t.Fatalf("group %d differs", i)
		}
	}
}

func TestQueueAddPrependsAndRemove(t *testing.T) {
	q := New()
	q.Add(prod("A", 1))
	q.Add(prod("B", 2))
	got := q.Products()
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "A" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if q.Remove("missing") {
		t.Fatalf("removing unknown id should report false")
	}
	if !q.Remove("B") || q.Len() != 1 {
		t.Fatalf("remove failed, len=%d", q.Len())
	}
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	q := New(prod("A", 2))
	snap := q.Snapshot()
	q.Add(prod("B", 5))
	q.Remove("A")
	if len(snap) != 1 || ids(snap[0]) != [2]string{"A", "A"} {
		t.Fatalf("snapshot changed: %v", ids(snap[0]))
	}
}
