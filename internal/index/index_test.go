package index

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mihirdhamankar/searchlite/internal/codec"
	"github.com/mihirdhamankar/searchlite/internal/store"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

var testDocs = []Document{
	{ID: "doc-a", Terms: []string{"quick", "brown", "fox"}},
	{ID: "doc-b", Terms: []string{"lazy", "brown", "dog"}},
	{ID: "doc-c", Terms: []string{"quick", "quick", "dog"}},
}

func TestBuildAndLookup(t *testing.T) {
	idx, err := Build(Options{Mode: ModeTFIDF, Compression: codec.SchemeVarByte}, testDocs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if idx.N() != 3 {
		t.Errorf("N() = %d, want 3", idx.N())
	}
	if idx.TermCount() != 5 {
		t.Errorf("TermCount() = %d, want 5", idx.TermCount())
	}

	list := idx.Lookup("quick")
	if len(list) != 2 {
		t.Fatalf("quick posting list has %d entries, want 2", len(list))
	}
	if list[0].DocID != 0 || list[1].DocID != 2 {
		t.Errorf("quick docs = [%d %d], want [0 2]", list[0].DocID, list[1].DocID)
	}
	if got := list[1].Frequency(); got != 2 {
		t.Errorf("quick frequency in doc-c = %d, want 2", got)
	}

	if idx.DocFreq("dog") != 2 {
		t.Errorf("DocFreq(dog) = %d, want 2", idx.DocFreq("dog"))
	}

	// Absent terms yield nil lists, never errors.
	if idx.Lookup("cat") != nil {
		t.Error("Lookup of absent term should be nil")
	}
	if idx.DocFreq("cat") != 0 {
		t.Error("DocFreq of absent term should be 0")
	}
}

func TestBuildPostingListInvariants(t *testing.T) {
	docs := make([]Document, 0, 40)
	for i := 0; i < 40; i++ {
		terms := []string{"common", "filler"}
		if i%3 == 0 {
			terms = append(terms, "common", "sparse")
		}
		docs = append(docs, Document{ID: fmt.Sprintf("doc-%03d", i), Terms: terms})
	}
	idx, err := Build(Options{Mode: ModeBoolean, Optimization: OptSkipPointers}, docs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, term := range []string{"common", "filler", "sparse"} {
		list := idx.Lookup(term)
		if len(list) == 0 {
			t.Fatalf("%q: empty posting list", term)
		}
		for i, p := range list {
			if i > 0 && list[i-1].DocID >= p.DocID {
				t.Fatalf("%q: docs not ascending at %d (%d after %d)", term, i, p.DocID, list[i-1].DocID)
			}
			if len(p.Positions) == 0 {
				t.Fatalf("%q: doc %d has no positions", term, p.DocID)
			}
			for j := 1; j < len(p.Positions); j++ {
				if p.Positions[j] <= p.Positions[j-1] {
					t.Fatalf("%q: doc %d positions not strictly increasing", term, p.DocID)
				}
			}
		}
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	docs := []Document{
		{ID: "same", Terms: []string{"one"}},
		{ID: "same", Terms: []string{"two"}},
	}
	if _, err := Build(Options{}, docs); err == nil {
		t.Fatal("expected error for duplicate document ids")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"boolean with skips", Options{Mode: ModeBoolean, Optimization: OptSkipPointers}, false},
		{"tf with skips", Options{Mode: ModeTermFreq, Optimization: OptSkipPointers}, true},
		{"tfidf with skips", Options{Mode: ModeTFIDF, Optimization: OptSkipPointers}, true},
		{"tfidf plain", Options{Mode: ModeTFIDF, Compression: codec.SchemeDeflate}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrConfiguration) {
					t.Errorf("got %v, want ErrConfiguration", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestExternalIDMapping(t *testing.T) {
	idx, err := Build(Options{}, testDocs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, doc := range testDocs {
		external, ok := idx.ExternalID(uint32(i))
		if !ok || external != doc.ID {
			t.Errorf("ExternalID(%d) = %q, %v; want %q", i, external, ok, doc.ID)
		}
		internal, ok := idx.InternalID(doc.ID)
		if !ok || internal != uint32(i) {
			t.Errorf("InternalID(%q) = %d, %v; want %d", doc.ID, internal, ok, i)
		}
	}
	if _, ok := idx.ExternalID(99); ok {
		t.Error("ExternalID(99) should not resolve")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	schemes := []codec.Scheme{codec.SchemeRaw, codec.SchemeVarByte, codec.SchemeDeflate}
	modes := []Mode{ModeBoolean, ModeTermFreq, ModeTFIDF}

	for _, scheme := range schemes {
		for _, mode := range modes {
			opts := Options{Mode: mode, Compression: scheme}
			t.Run(mode.String()+"/"+scheme.String(), func(t *testing.T) {
				s := openTestStore(t)
				built, err := Build(opts, testDocs)
				if err != nil {
					t.Fatalf("build: %v", err)
				}
				if err := built.Persist(s); err != nil {
					t.Fatalf("persist: %v", err)
				}

				loaded, err := Load(s, opts)
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				assertSameIndex(t, built, loaded)
			})
		}
	}
}

func TestPersistLoadWithSkipPointers(t *testing.T) {
	opts := Options{Mode: ModeBoolean, Compression: codec.SchemeVarByte, Optimization: OptSkipPointers}
	s := openTestStore(t)

	docs := make([]Document, 0, 16)
	for i := 0; i < 16; i++ {
		docs = append(docs, Document{ID: docID(i), Terms: []string{"common"}})
	}
	built, err := Build(opts, docs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := built.Persist(s); err != nil {
		t.Fatalf("persist: %v", err)
	}

	loaded, err := Load(s, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Skip pointers are rebuilt at load, not persisted.
	builtSkips := built.Skips("common")
	loadedSkips := loaded.Skips("common")
	if len(builtSkips) == 0 {
		t.Fatal("built index should carry skip pointers for a 16-entry list")
	}
	if len(loadedSkips) != len(builtSkips) {
		t.Fatalf("loaded skips = %d entries, want %d", len(loadedSkips), len(builtSkips))
	}
	for i := range builtSkips {
		if loadedSkips[i] != builtSkips[i] {
			t.Errorf("skip[%d] = %+v, want %+v", i, loadedSkips[i], builtSkips[i])
		}
	}
}

func TestLoadIdentityMismatch(t *testing.T) {
	s := openTestStore(t)
	built, err := Build(Options{Mode: ModeTFIDF, Compression: codec.SchemeVarByte}, testDocs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := built.Persist(s); err != nil {
		t.Fatalf("persist: %v", err)
	}

	mismatched := []Options{
		{Mode: ModeTermFreq, Compression: codec.SchemeVarByte},
		{Mode: ModeTFIDF, Compression: codec.SchemeRaw},
		{Mode: ModeBoolean, Compression: codec.SchemeVarByte, Optimization: OptSkipPointers},
	}
	for _, opts := range mismatched {
		if _, err := Load(s, opts); !errors.Is(err, apperrors.ErrIdentityMismatch) {
			t.Errorf("Load with %+v: got %v, want ErrIdentityMismatch", opts, err)
		}
	}
}

func TestLoadMissingIndex(t *testing.T) {
	s := openTestStore(t)
	if _, err := Load(s, Options{}); !errors.Is(err, apperrors.ErrIndexNotFound) {
		t.Fatalf("got %v, want ErrIndexNotFound", err)
	}
}

func TestPersistTwiceIsStable(t *testing.T) {
	opts := Options{Mode: ModeTermFreq, Compression: codec.SchemeDeflate}
	s := openTestStore(t)
	built, err := Build(opts, testDocs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := built.Persist(s); err != nil {
		t.Fatalf("first persist: %v", err)
	}
	if err := built.Persist(s); err != nil {
		t.Fatalf("second persist: %v", err)
	}
	loaded, err := Load(s, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameIndex(t, built, loaded)
}

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenFile(filepath.Join(t.TempDir(), "index.slix"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func assertSameIndex(t *testing.T, want, got *Index) {
	t.Helper()
	if got.N() != want.N() {
		t.Fatalf("N() = %d, want %d", got.N(), want.N())
	}
	if got.TermCount() != want.TermCount() {
		t.Fatalf("TermCount() = %d, want %d", got.TermCount(), want.TermCount())
	}
	for term, entry := range want.terms {
		gotList := got.Lookup(term)
		if len(gotList) != len(entry.list) {
			t.Fatalf("term %q: %d postings, want %d", term, len(gotList), len(entry.list))
		}
		for i, p := range entry.list {
			g := gotList[i]
			if g.DocID != p.DocID {
				t.Errorf("term %q posting %d: doc %d, want %d", term, i, g.DocID, p.DocID)
			}
			if len(g.Positions) != len(p.Positions) {
				t.Fatalf("term %q doc %d: %d positions, want %d",
					term, p.DocID, len(g.Positions), len(p.Positions))
			}
			for j := range p.Positions {
				if g.Positions[j] != p.Positions[j] {
					t.Errorf("term %q doc %d position %d: %d, want %d",
						term, p.DocID, j, g.Positions[j], p.Positions[j])
				}
			}
		}
	}
	for i := 0; i < want.N(); i++ {
		w, _ := want.ExternalID(uint32(i))
		g, _ := got.ExternalID(uint32(i))
		if w != g {
			t.Errorf("ExternalID(%d) = %q, want %q", i, g, w)
		}
	}
}

func docID(i int) string {
	return fmt.Sprintf("doc-%03d", i)
}
