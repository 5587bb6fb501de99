package disclosures

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/yungbote/disclosure-backend/internal/data/repos/testutil"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

var docketPattern = regexp.MustCompile(`^IDF-\d{4,}$`)

func TestFormatDocket(t *testing.T) {
	cases := map[int64]string{
		1:     "IDF-0001",
		42:    "IDF-0042",
		9999:  "IDF-9999",
		10000: "IDF-10000",
	}
	for n, want := range cases {
		if got := FormatDocket(n); got != want {
			t.Fatalf("FormatDocket(%d): want=%q got=%q", n, want, got)
		}
	}
}

func TestDocketSequencerMonotonic(t *testing.T) {
	eachDB(t, func(t *testing.T, db *gorm.DB) {
		seq := NewDocketSequencer(db, testutil.Logger(t))
		dbc := dbctx.Context{Ctx: context.Background()}

		first, err := seq.Next(dbc)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		second, err := seq.Next(dbc)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !docketPattern.MatchString(first) || !docketPattern.MatchString(second) {
			t.Fatalf("docket format: got=%q,%q", first, second)
		}
		if first == second {
			t.Fatalf("docket reused: %q", first)
		}
	})
}

func TestDocketSequencerFirstValueOnFreshDB(t *testing.T) {
	db := testutil.SQLite(t)
	seq := NewDocketSequencer(db, testutil.Logger(t))
	got, err := seq.Next(dbctx.Context{Ctx: context.Background()})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "IDF-0001" {
		t.Fatalf("first docket: want=%q got=%q", "IDF-0001", got)
	}
}

func TestDocketSequencerConcurrentUnique(t *testing.T) {
	db := testutil.SQLite(t)
	seq := NewDocketSequencer(db, testutil.Logger(t))

	const n = 32
	var (
		mu   sync.Mutex
		seen = make(map[string]bool, n)
		wg   sync.WaitGroup
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := seq.Next(dbctx.Context{Ctx: context.Background()})
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[got] {
				errs <- &duplicateDocket{got}
				return
			}
			seen[got] = true
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Next: %v", err)
	}
	if len(seen) != n {
		t.Fatalf("unique dockets: want=%d got=%d", n, len(seen))
	}
}

// The SQLite counter lives in the enclosing transaction, so a rolled-back
// create gives its number back. Committed values are still never reissued.
func TestCounterDocketReissuedAfterRollback(t *testing.T) {
	db := testutil.SQLite(t)
	seq := NewDocketSequencer(db, testutil.Logger(t))
	ctx := context.Background()

	before, err := seq.Next(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	tx := db.Begin()
	lost, err := seq.Next(dbctx.Context{Ctx: ctx, Tx: tx})
	if err != nil {
		t.Fatalf("Next in tx: %v", err)
	}
	tx.Rollback()

	after, err := seq.Next(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if before != "IDF-0001" || lost != "IDF-0002" || after != "IDF-0002" {
		t.Fatalf("dockets: want=IDF-0001,IDF-0002,IDF-0002 got=%s,%s,%s", before, lost, after)
	}
}

func TestSequenceDocketGapAfterRollback(t *testing.T) {
	db := testutil.DB(t)
	seq := NewDocketSequencer(db, testutil.Logger(t))
	ctx := context.Background()

	tx := db.Begin()
	lost, err := seq.Next(dbctx.Context{Ctx: ctx, Tx: tx})
	if err != nil {
		t.Fatalf("Next in tx: %v", err)
	}
	tx.Rollback()

	after, err := seq.Next(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if after == lost {
		t.Fatalf("rolled-back docket reissued: %q", after)
	}
}

type duplicateDocket struct{ v string }

func (d *duplicateDocket) Error() string { return "duplicate docket " + d.v }
