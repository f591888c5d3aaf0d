package instructor

// Format is a schema format hint. Only the formats listed here are accepted.
type Format string

const (
	FormatNone     Format = ""
	FormatDateTime Format = "date-time"
	FormatDate     Format = "date"
	FormatTime     Format = "time"
	FormatEmail    Format = "email"
	FormatUUID     Format = "uuid"
	FormatURI      Format = "uri"
	FormatByte     Format = "byte"
	FormatHostname Format = "hostname"
	FormatIPv4     Format = "ipv4"
	FormatIPv6     Format = "ipv6"
	FormatPassword Format = "password"
	FormatFloat    Format = "float"
	FormatDouble   Format = "double"
	FormatInt32    Format = "int32"
	FormatInt64    Format = "int64"
)

var knownFormats = map[Format]struct{}{
	FormatDateTime: {},
	FormatDate:     {},
	FormatTime:     {},
	FormatEmail:    {},
	FormatUUID:     {},
	FormatURI:      {},
	FormatByte:     {},
	FormatHostname: {},
	FormatIPv4:     {},
	FormatIPv6:     {},
	FormatPassword: {},
	FormatFloat:    {},
	FormatDouble:   {},
	FormatInt32:    {},
	FormatInt64:    {},
}

func (f Format) Valid() bool {
	if f == FormatNone {
		return true
	}
	_, ok := knownFormats[f]
	return ok
}

// Nullability overrides the nullable default of a member's type.
type Nullability int

const (
	NullDefault Nullability = iota
	NullForce
	NullNever
)
