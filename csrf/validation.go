package csrf

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValidationInfo is the outcome of a single ValidateRequest call.
//
// When Valid is true, Reason is empty and Err is nil.
type ValidationInfo struct {
	Valid           bool
	Reason          string
	Err             *Error
	Timestamp       time.Time
	TokenAgeSeconds float64
	Details         map[string]any
}

func newValidationInfo(now time.Time, age float64, details map[string]any, err *Error) ValidationInfo {
	if details == nil {
		details = map[string]any{}
	}
	vi := ValidationInfo{
		Valid:           err == nil,
		Timestamp:       now,
		TokenAgeSeconds: age,
		Details:         details,
	}
	if err != nil {
		vi.Err = err
		vi.Reason = err.Message
	}
	return vi
}

// Code returns the failure code, or "" for a successful validation.
func (v ValidationInfo) Code() Code {
	if v.Err == nil {
		return ""
	}
	return v.Err.Code
}

// AuditLine renders the one-line audit form:
//
//	time=<RFC3339> | valid=<bool> | reason=<...> | age=<n>s | details={k=v, ...}
//
// reason and details are omitted when empty. Detail keys are sorted.
func (v ValidationInfo) AuditLine() string {
	parts := []string{
		"time=" + v.Timestamp.UTC().Format(time.RFC3339Nano),
		fmt.Sprintf("valid=%t", v.Valid),
	}
	if v.Reason != "" {
		parts = append(parts, "reason="+v.Reason)
	}
	parts = append(parts, fmt.Sprintf("age=%.1fs", v.TokenAgeSeconds))
	if len(v.Details) > 0 {
		parts = append(parts, "details="+formatDetails(v.Details))
	}
	return strings.Join(parts, " | ")
}

func formatDetails(d map[string]any) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, d[k])
	}
	b.WriteByte('}')
	return b.String()
}

type validationJSON struct {
	Valid             bool           `json:"valid"`
	Reason            *string        `json:"reason"`
	Timestamp         string         `json:"timestamp"`
	TokenAgeSeconds   float64        `json:"token_age_seconds"`
	AdditionalDetails map[string]any `json:"additional_details"`
}

// MarshalJSON emits the serialized form consumed by log pipelines.
func (v ValidationInfo) MarshalJSON() ([]byte, error) {
	out := validationJSON{
		Valid:             v.Valid,
		Timestamp:         v.Timestamp.UTC().Format(time.RFC3339Nano),
		TokenAgeSeconds:   v.TokenAgeSeconds,
		AdditionalDetails: make(map[string]any, len(v.Details)+1),
	}
	for k, val := range v.Details {
		out.AdditionalDetails[k] = val
	}
	if v.Reason != "" {
		r := v.Reason
		out.Reason = &r
	}
	if v.Err != nil {
		out.AdditionalDetails["error"] = v.Err.Map()
	}
	return json.Marshal(out)
}
