package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/internal/dictionary"
	"github.com/robalobadob/wordscramble/internal/words"
)

type fixedProvider struct {
	word string
	err  error
}

func (p fixedProvider) PickRandomWord() (string, error) { return p.word, p.err }

// countingOracle accepts every word in known and counts lookups.
type countingOracle struct {
	known map[string]bool
	calls int
	err   error
}

func (o *countingOracle) IsRecognizedWord(_ context.Context, word string, _ language.Tag) (bool, error) {
	o.calls++
	if o.err != nil {
		return false, o.err
	}
	return o.known[word], nil
}

func newOracle(ws ...string) *countingOracle {
	o := &countingOracle{known: map[string]bool{}}
	for _, w := range ws {
		o.known[w] = true
	}
	return o
}

func startedSession(t *testing.T, root string, o dictionary.Oracle) *Session {
	t.Helper()
	s := New(fixedProvider{word: root}, o)
	got, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}
	return s
}

func TestStartSetsActiveState(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := New(fixedProvider{word: " SilkWorm "}, newOracle(), WithClock(func() time.Time { return now }), WithID("g1"))
	if s.State() != Idle {
		t.Fatalf("state = %s, want idle", s.State())
	}

	root, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if root != "silkworm" {
		t.Fatalf("root = %q, want silkworm", root)
	}
	snap := s.Snapshot()
	if snap.State != Active || snap.ID != "g1" || snap.Score != 0 || len(snap.UsedWords) != 0 || !snap.StartedAt.Equal(now) {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Language != "en" {
		t.Fatalf("language = %q, want en", snap.Language)
	}
}

func TestStartEmptyPoolIsFatal(t *testing.T) {
	s := New(words.NewList(nil), newOracle())
	_, err := s.Start(context.Background())
	if !errors.Is(err, ErrStartup) || !errors.Is(err, words.ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrStartup wrapping ErrEmptyPool", err)
	}
	if !Fatal(err) {
		t.Fatal("Fatal(err) = false, want true")
	}
	if s.State() != Idle || s.RootWord() != "" {
		t.Fatalf("state = %s root = %q, want idle and no root", s.State(), s.RootWord())
	}
	if _, err := s.Submit(context.Background(), "silk"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("submit err = %v, want ErrNotStarted", err)
	}
}

func TestStartBlankWordIsFatal(t *testing.T) {
	s := New(fixedProvider{word: "   "}, newOracle())
	if _, err := s.Start(context.Background()); !errors.Is(err, ErrStartup) {
		t.Fatalf("err = %v, want ErrStartup", err)
	}
}

func TestFailedRestartLeavesIdle(t *testing.T) {
	p := &switchProvider{words: []string{"silkworm"}}
	s := New(p, newOracle("silk"))
	if _, err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Submit(context.Background(), "silk"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := s.Start(context.Background()); !errors.Is(err, ErrStartup) {
		t.Fatalf("restart err = %v, want ErrStartup", err)
	}
	if s.State() != Idle || s.Score() != 0 || len(s.UsedWords()) != 0 {
		t.Fatalf("after failed restart: state=%s score=%d used=%v", s.State(), s.Score(), s.UsedWords())
	}
}

type switchProvider struct{ words []string }

func (p *switchProvider) PickRandomWord() (string, error) {
	if len(p.words) == 0 {
		return "", words.ErrEmptyPool
	}
	w := p.words[0]
	p.words = p.words[1:]
	return w, nil
}

func TestRestartResetsState(t *testing.T) {
	p := &switchProvider{words: []string{"attention", "silkworm"}}
	s := New(p, newOracle("note", "silk"))
	ctx := context.Background()

	if _, err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Submit(ctx, "note"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	root, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if root != "silkworm" || s.Score() != 0 || len(s.UsedWords()) != 0 {
		t.Fatalf("after restart: root=%q score=%d used=%v", root, s.Score(), s.UsedWords())
	}
}

func TestScoreAccumulatesLengths(t *testing.T) {
	s := startedSession(t, "attention", newOracle("note", "tone"))
	ctx := context.Background()

	res, err := s.Submit(ctx, "note")
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if res.Outcome != OutcomeAccepted || res.Score != 4 {
		t.Fatalf("note result = %+v, want accepted score 4", res)
	}
	res, err = s.Submit(ctx, "tone")
	if err != nil {
		t.Fatalf("tone: %v", err)
	}
	if res.Score != 8 || s.Score() != 8 {
		t.Fatalf("score = %d/%d, want 8", res.Score, s.Score())
	}
	if got := s.UsedWords(); !slices.Equal(got, []string{"tone", "note"}) {
		t.Fatalf("used = %v, want [tone note]", got)
	}
}

func TestSilkwormScenario(t *testing.T) {
	s := startedSession(t, "silkworm", newOracle("silk", "silkworms"))
	ctx := context.Background()

	res, err := s.Submit(ctx, "silk")
	if err != nil || res.Outcome != OutcomeAccepted || res.Score != 4 {
		t.Fatalf("silk = %+v, %v; want accepted score 4", res, err)
	}

	_, err = s.Submit(ctx, "silkworms")
	if !errors.Is(err, ErrNotComposable) {
		t.Fatalf("silkworms err = %v, want ErrNotComposable", err)
	}
	var rej *RejectionError
	if !errors.As(err, &rej) || rej.Word != "silkworms" || rej.Title != "Word not possible" {
		t.Fatalf("rejection = %+v", rej)
	}
	if s.Score() != 4 {
		t.Fatalf("score = %d, want 4", s.Score())
	}
}

func TestDuplicateIsCaseInsensitive(t *testing.T) {
	s := startedSession(t, "silent", newOracle("listen"))
	ctx := context.Background()

	if res, err := s.Submit(ctx, "Listen"); err != nil || res.Word != "listen" {
		t.Fatalf("Listen = %+v, %v; want accepted", res, err)
	}
	_, err := s.Submit(ctx, "listen")
	if !errors.Is(err, ErrDuplicateWord) {
		t.Fatalf("err = %v, want ErrDuplicateWord", err)
	}
	if Reason(err) != ReasonDuplicateWord {
		t.Fatalf("reason = %q", Reason(err))
	}
}

func TestIgnoredSubmissions(t *testing.T) {
	tests := []struct {
		name string
		word string
	}{
		{name: "root word", word: "silkworm"},
		{name: "root word case varied", word: "  SilkWorm "},
		{name: "two letters", word: "si"},
		{name: "one letter", word: "s"},
		{name: "blank", word: "   "},
		{name: "two letters not composable", word: "zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOracle("si", "s", "silkworm")
			s := startedSession(t, "silkworm", o)

			res, err := s.Submit(context.Background(), tt.word)
			if err != nil {
				t.Fatalf("err = %v, want nil", err)
			}
			if res.Outcome != OutcomeIgnored {
				t.Fatalf("outcome = %s, want ignored", res.Outcome)
			}
			if s.Score() != 0 || len(s.UsedWords()) != 0 {
				t.Fatalf("state changed: score=%d used=%v", s.Score(), s.UsedWords())
			}
			if o.calls != 0 {
				t.Fatalf("oracle calls = %d, want 0", o.calls)
			}
		})
	}
}

func TestRejectionIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		word string
		want error
	}{
		{name: "not composable", word: "zebra", want: ErrNotComposable},
		{name: "not a real word", word: "klis", want: ErrNotARealWord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startedSession(t, "silkworm", newOracle("silk"))
			for i := 0; i < 2; i++ {
				_, err := s.Submit(context.Background(), tt.word)
				if !errors.Is(err, tt.want) {
					t.Fatalf("attempt %d: err = %v, want %v", i+1, err, tt.want)
				}
				if s.Score() != 0 || len(s.UsedWords()) != 0 {
					t.Fatalf("attempt %d mutated state", i+1)
				}
			}
		})
	}
}

func TestOracleNotCalledForLocalRejections(t *testing.T) {
	o := newOracle("silk")
	s := startedSession(t, "silkworm", o)
	ctx := context.Background()

	if _, err := s.Submit(ctx, "silk"); err != nil {
		t.Fatalf("silk: %v", err)
	}
	_, _ = s.Submit(ctx, "silk")  // duplicate
	_, _ = s.Submit(ctx, "zebra") // not composable
	if o.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", o.calls)
	}
}

func TestOracleUnavailableNeverAccepts(t *testing.T) {
	cause := errors.New("spell checker offline")
	o := &countingOracle{err: cause}
	s := startedSession(t, "silkworm", o)

	_, err := s.Submit(context.Background(), "silk")
	if !errors.Is(err, ErrOracleUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want ErrOracleUnavailable wrapping cause", err)
	}
	if errors.Is(err, ErrNotARealWord) {
		t.Fatal("unavailable must be distinct from not a real word")
	}
	if Reason(err) != ReasonOracleUnavailable {
		t.Fatalf("reason = %q", Reason(err))
	}
	if s.Score() != 0 || len(s.UsedWords()) != 0 {
		t.Fatal("state mutated on oracle failure")
	}
}

func TestSubmitWithTimeoutOracle(t *testing.T) {
	set := dictionary.NewSet()
	set.Add(language.English, "silk")
	s := startedSession(t, "silkworm", dictionary.WithTimeout(set, time.Second))

	if _, err := s.Submit(context.Background(), "silk"); err != nil {
		t.Fatalf("silk: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Submit(ctx, "milk"); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("cancelled lookup err = %v, want ErrOracleUnavailable", err)
	}
}

func TestLanguageAwareNormalization(t *testing.T) {
	set := dictionary.NewSet()
	set.Add(language.Turkish, "kış")
	s := New(fixedProvider{word: "KIŞLIK"}, set, WithLanguage(language.Turkish))
	root, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if root != "kışlık" {
		t.Fatalf("root = %q, want kışlık", root)
	}
	res, err := s.Submit(context.Background(), "KIŞ")
	if err != nil || res.Outcome != OutcomeAccepted || res.Score != 3 {
		t.Fatalf("KIŞ = %+v, %v; want accepted score 3", res, err)
	}
}

func TestTurkishListsFromFiles(t *testing.T) {
	dir := t.TempDir()
	startPath := filepath.Join(dir, "start.txt")
	dictPath := filepath.Join(dir, "dict.txt")
	if err := os.WriteFile(startPath, []byte("KIŞLIK\n"), 0o644); err != nil {
		t.Fatalf("write start: %v", err)
	}
	if err := os.WriteFile(dictPath, []byte("# tr\nKIŞ\nILIK\n"), 0o644); err != nil {
		t.Fatalf("write dict: %v", err)
	}

	pool, err := words.Load(startPath)
	if err != nil {
		t.Fatalf("load start: %v", err)
	}
	set := dictionary.NewSet()
	if err := set.LoadFile(language.Turkish, dictPath); err != nil {
		t.Fatalf("load dict: %v", err)
	}

	s := New(pool, set, WithLanguage(language.Turkish))
	root, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if root != "kışlık" {
		t.Fatalf("root = %q, want kışlık", root)
	}

	tests := []struct {
		word  string
		score int
	}{
		{word: "KIŞ", score: 3},
		{word: "ılık", score: 7},
	}
	for _, tt := range tests {
		res, err := s.Submit(context.Background(), tt.word)
		if err != nil || res.Outcome != OutcomeAccepted || res.Score != tt.score {
			t.Fatalf("%s = %+v, %v; want accepted score %d", tt.word, res, err, tt.score)
		}
	}
	if _, err := s.Submit(context.Background(), "kış"); !errors.Is(err, ErrDuplicateWord) {
		t.Fatalf("kış err = %v, want ErrDuplicateWord", err)
	}
}

func TestUsedWordsReturnsCopy(t *testing.T) {
	s := startedSession(t, "silkworm", newOracle("silk"))
	if _, err := s.Submit(context.Background(), "silk"); err != nil {
		t.Fatalf("silk: %v", err)
	}
	got := s.UsedWords()
	got[0] = "mutated"
	if s.UsedWords()[0] != "silk" {
		t.Fatal("UsedWords exposed internal slice")
	}
}

func TestReasonUnknown(t *testing.T) {
	if r := Reason(errors.New("other")); r != "" {
		t.Fatalf("reason = %q, want empty", r)
	}
	if r := Reason(nil); r != "" {
		t.Fatalf("reason = %q, want empty", r)
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Active.String() != "active" || State(9).String() != "?" {
		t.Fatal("unexpected state strings")
	}
}
