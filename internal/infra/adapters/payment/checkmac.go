package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CheckMacValueField is the gateway's signature parameter. It is never part
// of the signed payload: it gets inserted after signing and stripped before
// any recomputation.
const CheckMacValueField = "CheckMacValue"

// CheckMacValue computes the gateway integrity signature over a parameter
// map. The canonicalization must match the provider bit-exactly:
// byte-sorted k=v pairs joined with '&', wrapped with the secret pair,
// form-encoded with an empty safe set, lowercased, SHA-256, uppercase hex.
func CheckMacValue(fields map[string]string, hashKey, hashIV string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == CheckMacValueField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	raw := "HashKey=" + hashKey + "&" + strings.Join(pairs, "&") + "&HashIV=" + hashIV

	// QueryEscape leaves [A-Za-z0-9_.~-] bare and turns space into '+',
	// which is exactly the form encoding the gateway hashes.
	encoded := strings.ToLower(url.QueryEscape(raw))

	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifyCheckMacValue recomputes the signature for an inbound field map and
// compares it with the claimed one, case-insensitively. A missing or empty
// claimed value fails.
func VerifyCheckMacValue(fields map[string]string, hashKey, hashIV string) bool {
	claimed := fields[CheckMacValueField]
	if claimed == "" {
		return false
	}
	return strings.EqualFold(claimed, CheckMacValue(fields, hashKey, hashIV))
}
