package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Joik2ww/FileOrganizer/internal/errors"
)

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func groupPaths(groups []DuplicateGroup) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, f := range g.Files {
			out[i] = append(out[i], f.Path)
		}
	}
	return out
}

func TestFindDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.txt")
	b := filepath.Join(dir, "B.txt")
	c := filepath.Join(dir, "C.txt")
	writeFile(t, a, "hello", base)
	writeFile(t, b, "hello", base.Add(time.Hour))
	writeFile(t, c, "world", base)

	res, err := FindDuplicates(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}

	want := [][]string{{a, b}}
	if got := groupPaths(res.Groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
	if res.Groups[0].Size != 5 {
		t.Errorf("group size = %d, want 5", res.Groups[0].Size)
	}
	if res.GroupStats.Candidates != 3 || res.GroupStats.Hashed != 3 {
		t.Errorf("unexpected group stats %+v", res.GroupStats)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}

	s := Summarize(res.Groups)
	if s.DuplicateFiles != 1 || s.ReclaimableBytes != 5 {
		t.Errorf("Summarize() = %+v", s)
	}
}

func TestFindDuplicates_EmptyDirectory(t *testing.T) {
	res, err := FindDuplicates(context.Background(), t.TempDir(), Options{Recursive: true})
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("expected no groups, got %v", res.Groups)
	}
}

func TestFindDuplicates_Recursive(t *testing.T) {
	dir := t.TempDir()
	top := filepath.Join(dir, "top.bin")
	nested := filepath.Join(dir, "x", "y", "nested.bin")
	writeFile(t, top, "same bytes", base)
	writeFile(t, nested, "same bytes", base)

	flat, err := FindDuplicates(context.Background(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(flat.Groups) != 0 {
		t.Errorf("non-recursive scan found %v", groupPaths(flat.Groups))
	}

	deep, err := FindDuplicates(context.Background(), dir, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{top, nested}}
	if got := groupPaths(deep.Groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestFindDuplicates_UnreadableBetweenScanAndHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	for i, p := range []string{a, b, c} {
		writeFile(t, p, "dup", base.Add(time.Duration(i)*time.Minute))
	}

	log := &mockLogger{}
	hashErr := errors.New("permission denied")
	res, err := FindDuplicates(context.Background(), dir, Options{
		Hasher: failingHasher(map[string]error{b: hashErr}),
		Logger: log,
	})
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}

	want := [][]string{{a, c}}
	if got := groupPaths(res.Groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
	if len(res.GroupStats.Failures) != 1 || res.GroupStats.Failures[0].Path != b {
		t.Fatalf("failures = %+v", res.GroupStats.Failures)
	}
	failure := res.GroupStats.Failures[0].Err
	if code := apperrors.GetCode(failure); code != apperrors.ErrHash {
		t.Errorf("failure code = %s, want %s", code, apperrors.ErrHash)
	}
	if !errors.Is(failure, hashErr) {
		t.Errorf("failure %v does not wrap %v", failure, hashErr)
	}
	if len(log.errorCalls) != 1 || log.errorCalls[0].operation != "hash" || !errors.Is(log.errorCalls[0].err, hashErr) {
		t.Errorf("logged errors = %+v", log.errorCalls)
	}
}

func TestFindDuplicates_NoFalseMatches(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"1": "aaaa", "2": "aaaa", "3": "aaab",
		"4": "bb", "5": "bb", "6": "bb",
		"7": "unique-length",
	}
	for name, content := range contents {
		writeFile(t, filepath.Join(dir, name), content, base)
	}

	res, err := FindDuplicates(context.Background(), dir, Options{Concurrency: 3})
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for _, g := range res.Groups {
		if len(g.Files) < 2 {
			t.Errorf("group %s has %d members", g.Digest, len(g.Files))
		}
		first := contents[filepath.Base(g.Files[0].Path)]
		for _, f := range g.Files {
			if contents[filepath.Base(f.Path)] != first {
				t.Errorf("group %s mixes contents", g.Digest)
			}
			if seen[f.Path] {
				t.Errorf("%s is in more than one group", f.Path)
			}
			seen[f.Path] = true
		}
	}

	var grouped []string
	for p := range seen {
		grouped = append(grouped, filepath.Base(p))
	}
	sort.Strings(grouped)
	if want := []string{"1", "2", "4", "5", "6"}; !reflect.DeepEqual(grouped, want) {
		t.Errorf("grouped files = %v, want %v", grouped, want)
	}

	// Larger group first.
	if res.Groups[0].Size != 4 {
		t.Errorf("first group size = %d, want 4", res.Groups[0].Size)
	}
}

func TestFindDuplicates_Progress(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(dir, string(rune('a'+i))), "same", base)
	}

	var mu sync.Mutex
	calls := map[Phase][][2]int{}
	_, err := FindDuplicates(context.Background(), dir, Options{
		Concurrency:       4,
		ScanProgressEvery: 5,
		HashProgressEvery: 5,
		Progress: func(phase Phase, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			calls[phase] = append(calls[phase], [2]int{done, total})
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{5, 12}, {10, 12}, {12, 12}}
	if !reflect.DeepEqual(calls[PhaseScan], want) {
		t.Errorf("scan progress = %v, want %v", calls[PhaseScan], want)
	}
	if !reflect.DeepEqual(calls[PhaseHash], want) {
		t.Errorf("hash progress = %v, want %v", calls[PhaseHash], want)
	}
}

func TestFindDuplicates_MissingRoot(t *testing.T) {
	_, err := FindDuplicates(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestFindDuplicates_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "x", base)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FindDuplicates(ctx, dir, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHashGrouper_Group(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one")
	p2 := filepath.Join(dir, "two")
	writeFile(t, p1, "abc", base.Add(time.Hour))
	writeFile(t, p2, "abc", base)

	log := &mockLogger{}
	g := NewHashGrouper(Options{Logger: log})
	groups, stats := g.Group(context.Background(), SizeBuckets{
		3: {rec(p1, 3, 1), rec(p2, 3, 0)},
	})

	if want := [][]string{{p2, p1}}; !reflect.DeepEqual(groupPaths(groups), want) {
		t.Errorf("groups = %v, want %v", groupPaths(groups), want)
	}
	if stats.Candidates != 2 || stats.Hashed != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if !reflect.DeepEqual(log.phaseStarts, []string{"hash"}) || !reflect.DeepEqual(log.phaseEnds, []string{"hash"}) {
		t.Errorf("phases logged: %v / %v", log.phaseStarts, log.phaseEnds)
	}
}
