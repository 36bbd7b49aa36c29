package sms

import (
	"regexp"
	"unicode/utf16"
)

type Encoding string

const (
	GSM7 Encoding = "GSM7"
	UCS2 Encoding = "UCS2"
)

// GSM 03.38 default alphabet plus its common extension characters.
var gsm7Regex = regexp.MustCompile(`^[A-Za-z0-9 \r\n@£$¥èéùìòÇØøÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ!"#$%&'()*+,\-./:;<=>?¡ÄÖÑÜ§¿äöñüà^{}\[~\]|€]+$`)

// SegmentLength returns the number of characters one SMS part can carry.
func SegmentLength(enc Encoding) int {
	if enc == UCS2 {
		return 70
	}
	return 160
}

// Classify returns GSM7 when msg is non-empty and every character is in the GSM 7-bit alphabet,
// UCS2 otherwise. An empty message is UCS2.
func Classify(msg string) Encoding {
	if gsm7Regex.MatchString(msg) {
		return GSM7
	}
	return UCS2
}

// Length counts msg in UTF-16 code units.
func Length(msg string) int {
	return len(utf16.Encode([]rune(msg)))
}

// Segmentation describes how one rendered message is split into parts.
type Segmentation struct {
	Encoding       Encoding `json:"encoding"`
	SegmentLength  int      `json:"segment_length"`
	CharacterCount int      `json:"character_count"`
	PartCount      int      `json:"part_count"`
}

func Segment(msg string) Segmentation {
	enc := Classify(msg)
	seg := Segmentation{
		Encoding:       enc,
		SegmentLength:  SegmentLength(enc),
		CharacterCount: Length(msg),
	}
	seg.PartCount = ceilDiv(seg.CharacterCount, seg.SegmentLength)
	return seg
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
