package sms

// CodeSubmitted is the provider code of an accepted submission.
const CodeSubmitted = 202

// ReasonUnknown is reported for unmapped codes and transport failures.
const ReasonUnknown = "Unknown error"

// ResponseCodes maps provider response codes to human-readable reasons.
var ResponseCodes = map[int]string{
	202:  "SMS Submitted Successfully",
	1001: "Invalid Number",
	1002: "Sender ID not correct or disabled",
	1003: "Please fill all required fields or contact your System Administrator",
	1005: "Internal Error",
	1006: "Balance Validity Not Available",
	1007: "Balance Insufficient",
	1011: "User ID not found",
	1012: "Masking SMS must be sent in Bengali",
	1013: "Sender ID has not found Gateway by API key",
	1014: "Sender Type Name not found using this sender by API key",
	1015: "Sender ID has not found any valid Gateway by API key",
	1016: "Sender Type Name Active Price Info not found by this sender ID",
	1017: "Sender Type Name Price Info not found by this sender ID",
	1018: "The Owner of this account is disabled",
	1019: "The Sender Type Name Price of this account is disabled",
	1020: "The parent of this account is not found",
	1021: "The parent active Sender Type Name price of this account is not found",
	1031: "Your Account Not Verified, Please Contact Administrator",
	1032: "IP Not whitelisted",
}

// Reason maps a provider code to its reason, falling back to ReasonUnknown.
func Reason(code int) string {
	if reason, ok := ResponseCodes[code]; ok {
		return reason
	}
	return ReasonUnknown
}
