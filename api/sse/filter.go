package sse

import "encoding/json"

func payloadHasKind(payload, kind string) bool {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(payload), &head); err != nil {
		return false
	}
	return head.Kind == kind
}
