package protocol

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURI returns the canonical form of a protocol or schema
// identifier:
//
//   - a missing scheme defaults to https
//   - scheme and host are lowercased
//   - a trailing slash on the path is stripped
//
// Normalization is idempotent: normalizing an already-normalized identifier
// yields the same identifier. It runs only on the creation path; validation
// of a serialized definition requires the stored form to already be
// normalized and rejects otherwise.
func NormalizeURI(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("normalize uri: empty identifier")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("normalize uri %q: %w", raw, err)
	}
	if u.Host == "" && u.Opaque == "" {
		return "", fmt.Errorf("normalize uri %q: no host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// NormalizeDefinition normalizes the protocol identifier and every declared
// type's schema identifier in place. Creation path only.
func NormalizeDefinition(def *Definition) error {
	norm, err := NormalizeURI(def.Protocol)
	if err != nil {
		return err
	}
	def.Protocol = norm

	for name, t := range def.Types {
		if t.Schema == "" {
			continue
		}
		normSchema, err := NormalizeURI(t.Schema)
		if err != nil {
			return fmt.Errorf("type %q: %w", name, err)
		}
		t.Schema = normSchema
		def.Types[name] = t
	}
	return nil
}
