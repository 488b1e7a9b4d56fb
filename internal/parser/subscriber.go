package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// First numeric run (comma grouping, dot decimal) plus an optional magnitude
// unit. Korean units may carry a 명 suffix; Latin abbreviations are matched
// case-insensitively.
var subscriberCountRe = regexp.MustCompile(`(?i)([\d.,]+)\s*(만명|천명|억명|만|천|억|K|M)?`)

// ParseSubscriberCount converts a locale-formatted subscriber magnitude
// string into an integer usable as a sort key. It never fails: any text
// without a parsable numeric run yields 0. The result is a display ordering
// aid, not an authoritative count.
//
//	"구독자 17만명" -> 170000
//	"1.23M"       -> 1230000
//	"500천"        -> 500000
func ParseSubscriberCount(text string) int64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	m := subscriberCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}

	unit := strings.TrimSuffix(strings.ToUpper(m[2]), "명")
	switch unit {
	case "만":
		return int64(num * 10_000)
	case "천", "K":
		return int64(num * 1_000)
	case "억":
		return int64(num * 100_000_000)
	case "M":
		return int64(num * 1_000_000)
	}
	return int64(num)
}
