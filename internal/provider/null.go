package provider

import "ziplock.sh/internal/zerrors"

// Null is the mobile-host provider: it performs no I/O at all. Every
// operation returns ExternalFileOperationsRequired, the protocol signal
// that tells the repository manager to hand control back to the host
// (spec.md §4.5, §5).
type Null struct{}

func NewNull() *Null { return &Null{} }

func (Null) Integrated() bool { return false }

func (Null) Exists(string) bool { return false }

func (Null) Read(string) ([]byte, error) {
	return nil, externalOpsRequired()
}

func (Null) Write(string, []byte) error {
	return externalOpsRequired()
}

func (Null) Remove(string) error {
	return externalOpsRequired()
}

func externalOpsRequired() error {
	return zerrors.New(zerrors.CodeExternalFileOperationsRequired, "host must perform file operations directly")
}
