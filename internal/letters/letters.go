// internal/letters/letters.go
//
// Letter multiset arithmetic for the word scramble engine.
// A candidate is "formable" from a source word when every letter it uses
// appears in the source at least as many times as the candidate needs it.
//
// Notes:
//   - Matching is rune-based and case-sensitive. Callers normalize first.
//   - All functions are pure; nothing here holds state.
package letters

// CanForm reports whether candidate can be spelled using only the letters of
// source, each letter of source consumable at most once.
//
// The source is treated as a pool of remaining letters. Each rune of the
// candidate, left to right, takes one matching letter out of the pool; the
// first rune with nothing left to take fails the match.
func CanForm(candidate, source string) bool {
	pool := Counts(source)
	for _, r := range candidate {
		if pool[r] == 0 {
			return false
		}
		pool[r]--
	}
	return true
}

// Counts returns the frequency of every rune in s.
func Counts(s string) map[rune]int {
	m := make(map[rune]int, len(s))
	for _, r := range s {
		m[r]++
	}
	return m
}

// Missing returns the runes candidate needs beyond what source offers,
// with the shortfall for each. It is empty exactly when CanForm is true.
func Missing(candidate, source string) map[rune]int {
	pool := Counts(source)
	out := map[rune]int{}
	for _, r := range candidate {
		if pool[r] == 0 {
			out[r]++
			continue
		}
		pool[r]--
	}
	return out
}
