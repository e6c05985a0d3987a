package normalize

// Meta is the provenance side-channel attached to a record. Zero
// value means "nothing known."
type Meta struct {
	LogGroup  string
	LogStream string

	CWLAccountID string
	CWLID        string
	CWLTimestamp int64 // epoch millis, 0 if unset

	CWEID        string
	CWESource    string
	CWEAccountID string
	CWERegion    string
	CWETimestamp string

	ContainerID       string
	ContainerName     string
	ContainerSource   string
	ECSCluster        string
	ECSTaskARN        string
	ECSTaskDefinition string
	EC2InstanceID     string

	SkipNormalization bool
	ErrorMessage      string

	IsIgnored     bool
	IgnoredReason string
}

// Payload is a record's not-yet-normalized body: either raw text or an
// already-parsed nested structure (JSON/XML/WinEvt).
type Payload struct {
	Text   string
	Parsed Dict
}

// IsParsed reports whether Parsed should be used in place of Text.
func (p Payload) IsParsed() bool { return p.Parsed != nil }

// Record is one (payload, meta) pair flowing from LogSource into the
// Normalizer.
type Record struct {
	Payload Payload
	Meta    Meta
}
