package lastfm

import (
	"crypto/md5"
	"encoding/hex"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// calculateSignature returns the api_sig of a request: the hex MD5 of
// every name and value in name order, followed by the secret.
func calculateSignature(params map[string]string, secret string) string {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(params)) {
		b.WriteString(name)
		b.WriteString(params[name])
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// signedForm returns params as a form body with the api_sig appended.
func signedForm(params map[string]string, secret string) url.Values {
	form := make(url.Values, len(params)+1)
	for name, value := range params {
		form.Set(name, value)
	}
	form.Set("api_sig", calculateSignature(params, secret))
	return form
}
