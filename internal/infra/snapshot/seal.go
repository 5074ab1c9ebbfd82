package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
)

// ageHeader starts every binary age file.
const ageHeader = "age-encryption.org/v1\n"

// sealer encrypts snapshots to the recipient of an X25519 identity and
// decrypts them with the same identity.
type sealer struct {
	identity  age.Identity
	recipient age.Recipient
}

func loadSealer(path string) (*sealer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer func() { _ = f.Close() }()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse identity file %s: %w", path, err)
	}

	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return &sealer{identity: x, recipient: x.Recipient()}, nil
		}
	}
	return nil, fmt.Errorf("identity file %s has no X25519 identity", path)
}

func (s *sealer) encrypt(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *sealer) decrypt(data []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted snapshot: %w", err)
	}
	return plain, nil
}

func isEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}

// GenerateIdentity writes a new age X25519 identity to path and returns
// its public recipient string. An existing file is never overwritten.
func GenerateIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating age identity: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create identity file: %w", err)
	}
	defer func() { _ = f.Close() }()

	recipient := identity.Recipient().String()
	content := fmt.Sprintf("# public key: %s\n%s\n", recipient, identity.String())
	if _, err := f.WriteString(content); err != nil {
		return "", fmt.Errorf("write identity file: %w", err)
	}
	return recipient, nil
}
