package sms

import "github.com/shopspring/decimal"

// Estimate is the derived cost of sending a template to a recipient set.
type Estimate struct {
	// MaxLength is the longest rendered message, or the template length when nothing is longer.
	MaxLength int `json:"max_length"`
	// SegmentLength is the shared segment length used for TotalParts.
	SegmentLength  int             `json:"segment_length"`
	TotalParts     int             `json:"total_parts"`
	RecipientCount int             `json:"recipient_count"`
	Rate           decimal.Decimal `json:"rate"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	// Recipients is index-aligned with the recipients passed to EstimateCost.
	// Missing recipients have a zero Segmentation.
	Recipients []Segmentation `json:"recipients"`
}

// EstimateCost computes one part count shared by every recipient:
// ceil(max rendered length / max segment length), where the segment length starts at 160
// and only grows. TotalCost = TotalParts × RecipientCount × rate.
// Missing recipients are billed but do not take part in the maxima.
func EstimateCost(template string, recipients []Recipient, rate decimal.Decimal) Estimate {
	est := Estimate{
		MaxLength:      Length(template),
		SegmentLength:  SegmentLength(GSM7),
		RecipientCount: len(recipients),
		Rate:           rate,
		Recipients:     make([]Segmentation, len(recipients)),
	}

	for i, r := range recipients {
		if r.Missing {
			continue
		}
		seg := Segment(Personalize(template, r))
		est.Recipients[i] = seg
		if seg.CharacterCount > est.MaxLength {
			est.MaxLength = seg.CharacterCount
		}
		if seg.SegmentLength > est.SegmentLength {
			est.SegmentLength = seg.SegmentLength
		}
	}

	est.TotalParts = ceilDiv(est.MaxLength, est.SegmentLength)
	est.TotalCost = rate.Mul(decimal.NewFromInt(int64(est.TotalParts * est.RecipientCount)))
	return est
}
