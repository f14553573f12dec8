package utils

import "strings"

// CallIDFromCID extracts the call id from a provider call_cid ("type:id").
// Returns "" when the cid has no id part.
func CallIDFromCID(cid string) string {
	parts := strings.Split(cid, ":")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CallCID builds the provider call_cid for a call type and id.
func CallCID(callType, id string) string {
	return callType + ":" + id
}
