package remap

import "testing"

func TestAnchors_PushEvictsOldest(t *testing.T) {
	var l Anchors

	l, _, evicted := l.Push(Anchor{0.1, 0.1})
	if evicted || len(l) != 1 {
		t.Fatalf("first push: len=%d evicted=%v", len(l), evicted)
	}

	l, _, evicted = l.Push(Anchor{0.2, 0.2})
	if evicted || len(l) != 2 {
		t.Fatalf("second push: len=%d evicted=%v", len(l), evicted)
	}

	l, old, evicted := l.Push(Anchor{0.3, 0.3})
	if !evicted {
		t.Fatal("third push should evict")
	}
	if old != (Anchor{0.1, 0.1}) {
		t.Errorf("evicted %v, want oldest (0.1, 0.1)", old)
	}

	want := Anchors{{0.2, 0.2}, {0.3, 0.3}}
	if len(l) != len(want) {
		t.Fatalf("len = %d, want %d", len(l), len(want))
	}
	for i := range want {
		if l[i] != want[i] {
			t.Errorf("l[%d] = %v, want %v", i, l[i], want[i])
		}
	}
}

func TestAnchors_PushWrapsCoordinates(t *testing.T) {
	l, _, _ := Anchors(nil).Push(Anchor{1.25, -0.25})
	if l[0] != (Anchor{0.25, 0.75}) {
		t.Errorf("Push wrapped to %v, want (0.25, 0.75)", l[0])
	}
}

func TestAnchors_PushDoesNotMutateReceiver(t *testing.T) {
	base := Anchors{{0.1, 0.1}, {0.2, 0.2}}
	_, _, _ = base.Push(Anchor{0.3, 0.3})

	if base[0] != (Anchor{0.1, 0.1}) || base[1] != (Anchor{0.2, 0.2}) {
		t.Errorf("receiver modified: %v", base)
	}
}

func TestAnchors_Pop(t *testing.T) {
	l := Anchors{{0.1, 0.1}, {0.2, 0.2}}

	l, removed, ok := l.Pop()
	if !ok || removed != (Anchor{0.2, 0.2}) {
		t.Fatalf("Pop() = %v, %v; want newest anchor", removed, ok)
	}
	if len(l) != 1 || l[0] != (Anchor{0.1, 0.1}) {
		t.Errorf("after Pop: %v", l)
	}

	l, _, _ = l.Pop()
	if _, _, ok := l.Pop(); ok {
		t.Error("Pop on empty list should report false")
	}
}
