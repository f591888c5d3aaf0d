package instructor

import "strings"

type FinishReason int

const (
	FinishReasonUnspecified FinishReason = iota
	FinishReasonStop
	FinishReasonMaxTokens
	FinishReasonSafety
	FinishReasonRecitation
	FinishReasonBlocklist
	FinishReasonProhibitedContent
	FinishReasonOther
)

var finishReasonLiterals = map[FinishReason]string{
	FinishReasonUnspecified:       "FINISH_REASON_UNSPECIFIED",
	FinishReasonStop:              "STOP",
	FinishReasonMaxTokens:         "MAX_TOKENS",
	FinishReasonSafety:            "SAFETY",
	FinishReasonRecitation:        "RECITATION",
	FinishReasonBlocklist:         "BLOCKLIST",
	FinishReasonProhibitedContent: "PROHIBITED_CONTENT",
	FinishReasonOther:             "OTHER",
}

func (r FinishReason) String() string {
	if s, ok := finishReasonLiterals[r]; ok {
		return s
	}
	return finishReasonLiterals[FinishReasonOther]
}

func (r FinishReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText maps wire literals case-insensitively; literals this package
// does not know become FinishReasonOther.
func (r *FinishReason) UnmarshalText(text []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	if s == "" {
		*r = FinishReasonUnspecified
		return nil
	}
	for k, v := range finishReasonLiterals {
		if v == s {
			*r = k
			return nil
		}
	}
	*r = FinishReasonOther
	return nil
}
