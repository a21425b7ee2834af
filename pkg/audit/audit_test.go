package audit

import "testing"

func TestLatestOrderAndWraparound(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(Record{Command: "add", Addr: string(rune('a' + i))})
	}

	got := b.Latest(3)
	if len(got) != 3 {
		t.Fatalf("Latest(3) len = %d, want 3", len(got))
	}
	want := []string{"c", "d", "e"}
	for i, r := range got {
		if r.Addr != want[i] {
			t.Fatalf("Latest()[%d].Addr = %q, want %q", i, r.Addr, want[i])
		}
	}
}

func TestLatestBeforeFull(t *testing.T) {
	b := NewBuffer(10)
	b.Add(Record{Addr: "a"})
	b.Add(Record{Addr: "b"})

	got := b.Latest(10)
	if len(got) != 2 {
		t.Fatalf("Latest(10) len = %d, want 2", len(got))
	}
}

func TestSeqIncreases(t *testing.T) {
	b := NewBuffer(4)
	b.Add(Record{Addr: "a"})
	b.Add(Record{Addr: "b"})
	got := b.Latest(2)
	if got[0].Seq >= got[1].Seq {
		t.Fatalf("Seq did not increase: %d >= %d", got[0].Seq, got[1].Seq)
	}
}

func TestSubscribeReceivesNewRecords(t *testing.T) {
	b := NewBuffer(4)
	sub := b.Subscribe()
	defer sub.Close()

	b.Add(Record{Command: "delete", Addr: "aa:bb:cc:dd:ee:ff"})

	select {
	case r := <-sub.C():
		if r.Command != "delete" {
			t.Fatalf("got command %q, want delete", r.Command)
		}
	default:
		t.Fatal("subscription received nothing")
	}
}

func TestCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	b := NewBuffer(4)
	sub := b.Subscribe()
	sub.Close()
	sub.Close()

	b.Add(Record{Command: "add"})
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel to yield no values")
	}
}

func TestLatestFiltered(t *testing.T) {
	b := NewBuffer(8)
	b.Add(Record{Command: "add", Addr: "a"})
	b.Add(Record{Command: "delete", Addr: "b"})
	b.Add(Record{Command: "add", Addr: "c"})

	got := b.LatestFiltered(10, func(r Record) bool { return r.Command == "add" })
	if len(got) != 2 {
		t.Fatalf("LatestFiltered len = %d, want 2", len(got))
	}
	if got[0].Addr != "a" || got[1].Addr != "c" {
		t.Fatalf("LatestFiltered order wrong: %+v", got)
	}
}
