package bom

import "github.com/google/uuid"

// RefSource produces the random portion of local references and serial
// numbers. Production code uses DefaultSource; tests inject a deterministic
// sequence so structural assertions do not depend on random values.
type RefSource func() string

// DefaultSource draws random UUIDv4 strings.
var DefaultSource RefSource = uuid.NewString

// NewRef builds a local reference in the "{name}:{id}" format. References are
// meaningful only within the single document they were generated for.
func NewRef(src RefSource, name string) string {
	return name + ":" + src()
}

// NewSerialNumber builds a document serial number in the "urn:uuid:{id}"
// format.
func NewSerialNumber(src RefSource) string {
	return "urn:uuid:" + src()
}
