package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSchema = "dimarray/schema/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SchemaID computes a stable fingerprint for a schema declaration.
// Field order is significant; it decides which field is primary.
func SchemaID(spec SchemaSpec) (string, error) {
	fields := make([]any, len(spec.Fields))
	for i, f := range spec.Fields {
		obj, err := canonicalField(f)
		if err != nil {
			return "", fmt.Errorf("SchemaID: field %q: %w", f.Name, err)
		}
		fields[i] = obj
	}

	obj := map[string]any{
		"name":       spec.Name,
		"dims":       spec.Shape.Dims,
		"dtype":      spec.Shape.DType,
		"creator":    spec.Creator,
		"fields":     fields,
		"ir_version": IRVersion,
	}
	if spec.Shape.Dims == nil {
		obj["dims"] = []string{}
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SchemaID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSchema, canonical), nil
}

// MustSchemaID is like SchemaID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSchemaID(spec SchemaSpec) string {
	id, err := SchemaID(spec)
	if err != nil {
		panic(err)
	}
	return id
}

func canonicalField(f FieldDescriptor) (map[string]any, error) {
	if f.Tag == nil {
		return nil, fmt.Errorf("missing type tag")
	}
	obj := map[string]any{
		"name": f.Name,
		"kind": f.Tag.Kind(),
	}
	switch tag := f.Tag.(type) {
	case Plain:
		obj["type"] = tag.Type
	case Coordinate:
		dims := []string(tag.Dims)
		if dims == nil {
			dims = []string{}
		}
		obj["dims"] = dims
		obj["dtype"] = tag.DType
	case Attr:
		obj["type"] = tag.Type
	case Name:
		obj["type"] = tag.Type
	}
	if f.HasDefault && f.Default != nil {
		obj["default"] = canonicalDefault(f.Default)
	}
	return obj, nil
}

// canonicalDefault returns v if it has a canonical JSON form and its %v
// text otherwise, so defaults of any Go type still fingerprint.
func canonicalDefault(v any) any {
	if _, err := MarshalCanonical(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}
