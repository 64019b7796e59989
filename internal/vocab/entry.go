// Package vocab parses vocabulary lists sent to the bot and fills in their
// Chinese meanings.
package vocab

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Entry struct {
	Word    string
	POS     string
	Meaning string
}

var ErrInvalidList = errors.New("invalid vocabulary list")

var posNames = map[string]string{
	"v":   "verb",
	"n":   "noun",
	"adj": "adjective",
	"adv": "adverb",
}

// NormalizePOS expands the usual abbreviations; anything else passes through.
func NormalizePOS(pos string) string {
	p := strings.TrimSpace(pos)
	if full, ok := posNames[strings.ToLower(p)]; ok {
		return full
	}
	return p
}

// ParseList reads "word,pos[,meaning];word,pos;...".
func ParseList(text string) ([]Entry, error) {
	var entries []Entry
	for i, item := range strings.Split(text, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.SplitN(item, ",", 3)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: item %d %q needs word,pos", ErrInvalidList, i+1, item)
		}
		word := strings.ToLower(strings.TrimSpace(fields[0]))
		pos := NormalizePOS(fields[1])
		if word == "" || pos == "" {
			return nil, fmt.Errorf("%w: item %d %q has an empty word or part of speech", ErrInvalidList, i+1, item)
		}
		e := Entry{Word: word, POS: pos}
		if len(fields) == 3 {
			e.Meaning = strings.TrimSpace(fields[2])
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no words given", ErrInvalidList)
	}
	return entries, nil
}

// Label is the table cell text "word (pos)".
func (e Entry) Label() string {
	return fmt.Sprintf("%s (%s)", e.Word, e.POS)
}

// WeekOfMonth counts weeks from the Monday-based week containing the 1st.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := (int(first.Weekday()) + 6) % 7
	return (t.Day()+offset-1)/7 + 1
}

// Title is the heading of a vocabulary sheet, e.g. "Nov 2025 Week 3".
func Title(t time.Time) string {
	return fmt.Sprintf("%s %d Week %d", t.Month().String()[:3], t.Year(), WeekOfMonth(t))
}
