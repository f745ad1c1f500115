package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// GenerationKey fingerprints a slide-generation request so equal requests
// share a cache entry.
func GenerationKey(topic string, numSlides int, customContent string) string {
	return fingerprint(struct {
		Topic         string `json:"topic"`
		NumSlides     int    `json:"num_slides"`
		CustomContent string `json:"custom_content"`
	}{topic, numSlides, customContent})
}

// ResponseKey fingerprints an API response by endpoint and query parameters.
func ResponseKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([][2]string, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]string{k, params[k]})
	}
	return fingerprint(struct {
		Endpoint string      `json:"endpoint"`
		Params   [][2]string `json:"params"`
	}{endpoint, ordered})
}

func fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// Inputs are plain strings and ints; Marshal cannot fail on them.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
