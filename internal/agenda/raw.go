package agenda

import (
	"encoding/json"
	"fmt"
	"io"
)

// RawSnapshot mirrors the exported snapshot document: flat arrays of
// records with string foreign keys and bilingual fields keyed in the
// "title:en" / "title:zh-TW" pattern.
type RawSnapshot struct {
	Sessions     []RawSession     `json:"sessions"`
	Speakers     []RawSpeaker     `json:"speakers"`
	SessionTypes []RawSessionType `json:"session_types"`
	Rooms        []RawRoom        `json:"rooms"`
	Tags         []RawTag         `json:"tags"`
}

// RawSession is one denormalized session row.
type RawSession struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Room          string   `json:"room"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Language      string   `json:"language"`
	TitleEN       string   `json:"title:en"`
	TitleZH       string   `json:"title:zh-TW"`
	DescriptionEN string   `json:"description:en"`
	DescriptionZH string   `json:"description:zh-TW"`
	CoWrite       string   `json:"co_write"`
	QA            string   `json:"qa"`
	Slide         string   `json:"slide"`
	Record        string   `json:"record"`
	URI           string   `json:"uri"`
	Speakers      []string `json:"speakers"`
	Tags          []string `json:"tags"`
}

// RawSpeaker is one denormalized speaker row.
type RawSpeaker struct {
	ID     string `json:"id"`
	Avatar string `json:"avatar"`
	NameEN string `json:"name:en"`
	NameZH string `json:"name:zh-TW"`
	BioEN  string `json:"bio:en"`
	BioZH  string `json:"bio:zh-TW"`
}

// RawSessionType is one session type row.
type RawSessionType struct {
	ID     string `json:"id"`
	NameEN string `json:"name:en"`
	NameZH string `json:"name:zh-TW"`
}

// RawRoom is one room row.
type RawRoom struct {
	ID     string `json:"id"`
	NameEN string `json:"name:en"`
	NameZH string `json:"name:zh-TW"`
}

// RawTag is one tag row.
type RawTag struct {
	ID     string `json:"id"`
	NameEN string `json:"name:en"`
	NameZH string `json:"name:zh-TW"`
}

// DecodeSnapshot reads one raw snapshot document from r.
func DecodeSnapshot(r io.Reader) (*RawSnapshot, error) {
	var raw RawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("agenda: decode snapshot: %w", err)
	}
	return &raw, nil
}
