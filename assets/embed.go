// Package assets bundles the default word lists shipped with the server.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed start.txt dictionary_en.txt
var FS embed.FS

// ReadLines parses a newline-delimited word list. Lines are trimmed and
// returned in their original case, since lowercasing depends on the
// language; blank lines and "#" comments are skipped.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// StartWords returns the embedded pool of root words.
func StartWords() ([]string, error) {
	return readLines("start.txt")
}

// EnglishDictionary returns the embedded English word list.
func EnglishDictionary() ([]string, error) {
	return readLines("dictionary_en.txt")
}
