package util

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Typographic characters that show up when taxonomies are edited in word
// processors or spreadsheets.
var charReplacementMap = map[string]string{
	"\u2018": "'", "\u2019": "'", "\u201C": "\"", "\u201D": "\"",
	"\u2013": "-", "\u2014": "--", "\u2026": "...", "\u00a0": " ",
	"\u0091": "'", "\u0092": "'", "\u0093": "\"", "\u0094": "\"",
	"\u0096": "-", "\u0097": "--",
}

// LooksBinary reports whether the leading bytes contain a NUL byte.
func LooksBinary(data []byte) bool {
	head := data
	if len(head) > maxBinaryCheckBytes {
		head = head[:maxBinaryCheckBytes]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// CleanText strips a BOM, repairs invalid UTF-8 and replaces typographic
// punctuation with ASCII equivalents. src is only used in diagnostics.
func CleanText(data []byte, src string) (string, error) {
	if LooksBinary(data) {
		return "", fmt.Errorf("%s looks like a binary file", src)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		log.WithField("source", src).Warn("invalid UTF-8, replacing invalid chars")
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}

	str := string(data)
	for bad, good := range charReplacementMap {
		str = strings.ReplaceAll(str, bad, good)
	}
	return str, nil
}
